package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Catalog API",
        "description": "Years, semesters, units, modules, lessons and exams",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login and profile"},
        {"name": "Catalog", "description": "Academic catalog read, sync and editing"},
        {"name": "System", "description": "Operational endpoints"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Invalid username or password", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "429": {"description": "Too many login attempts", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/profile": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserInfo"}},
                    "401": {"description": "Not authorized", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/academic": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Read the academic catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/YearNode"}}},
                    "500": {"description": "Storage error", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/academic/sync": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Sync the academic catalog",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/YearNode"}}}
                ],
                "responses": {
                    "200": {"description": "Sync successful", "schema": {"$ref": "#/definitions/SyncMessage"}},
                    "400": {"description": "Invalid data format", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Not authorized", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Storage error", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/academic/modules": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Create a module",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateModuleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Module"}},
                    "409": {"description": "Duplicate id", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/academic/modules/{id}": {
            "put": {
                "tags": ["Catalog"],
                "summary": "Rename a module",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TitleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Module"}},
                    "404": {"description": "Module not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Catalog"],
                "summary": "Delete a module with its lessons and exams",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Success"}}
                }
            }
        },
        "/academic/semesters/{semesterId}/modules": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Create a module inside a semester",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "semesterId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/AddSemesterModuleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Module"}},
                    "404": {"description": "Semester not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/academic/modules/{moduleId}/lessons": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Add a lesson to a module",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "moduleId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddResourceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Resource"}},
                    "404": {"description": "Module not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/academic/modules/{moduleId}/exams": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Add an exam to a module",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "moduleId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddResourceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Resource"}},
                    "404": {"description": "Module not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/academic/lessons/{id}": {
            "delete": {
                "tags": ["Catalog"],
                "summary": "Delete a lesson",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "moduleId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Success"}}
                }
            }
        },
        "/academic/exams/{id}": {
            "delete": {
                "tags": ["Catalog"],
                "summary": "Delete an exam",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "moduleId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Success"}}
                }
            }
        },
        "/academic/export": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Export the catalog",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "System metrics summary",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SystemMetrics"}}
                }
            }
        }
    },
    "definitions": {
        "ErrorBody": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "stack": {"type": "string"}
            }
        },
        "Success": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"}
            }
        },
        "SyncMessage": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Sync successful"},
                "synced": {"$ref": "#/definitions/SyncResult"}
            }
        },
        "SyncResult": {
            "type": "object",
            "properties": {
                "years": {"type": "integer"},
                "semesters": {"type": "integer"},
                "units": {"type": "integer"},
                "modules": {"type": "integer"},
                "lessons": {"type": "integer"},
                "exams": {"type": "integer"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "UserInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "YearNode": {
            "type": "object",
            "required": ["id", "structure"],
            "properties": {
                "id": {"type": "string"},
                "label": {"type": "string"},
                "color": {"type": "string"},
                "icon": {"type": "string"},
                "structure": {"type": "string", "enum": ["semesters", "units"]},
                "semesters": {"type": "array", "items": {"$ref": "#/definitions/ContainerNode"}},
                "units": {"type": "array", "items": {"$ref": "#/definitions/ContainerNode"}},
                "standaloneModules": {"type": "array", "items": {"$ref": "#/definitions/ModuleNode"}}
            }
        },
        "ContainerNode": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"},
                "label": {"type": "string"},
                "modules": {"type": "array", "items": {"$ref": "#/definitions/ModuleNode"}}
            }
        },
        "ModuleNode": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "isShared": {"type": "boolean"},
                "isStandalone": {"type": "boolean"},
                "lessons": {"type": "array", "items": {"$ref": "#/definitions/ResourceNode"}},
                "exams": {"type": "array", "items": {"$ref": "#/definitions/ResourceNode"}}
            }
        },
        "ResourceNode": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "driveUrl": {"type": "string"}
            }
        },
        "Module": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "isShared": {"type": "boolean"},
                "isStandalone": {"type": "boolean"},
                "unitId": {"type": "string"},
                "standaloneYearId": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "Resource": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "moduleId": {"type": "string"},
                "title": {"type": "string"},
                "driveUrl": {"type": "string"}
            }
        },
        "CreateModuleRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "isShared": {"type": "boolean"},
                "isStandalone": {"type": "boolean"},
                "unitId": {"type": "string"},
                "standaloneYearId": {"type": "string"}
            }
        },
        "TitleRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string"}
            }
        },
        "AddSemesterModuleRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "isShared": {"type": "boolean"}
            }
        },
        "AddResourceRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string"},
                "driveUrl": {"type": "string"}
            }
        },
        "SystemMetrics": {
            "type": "object",
            "properties": {
                "cacheHitRatio": {"type": "number"},
                "cacheHits": {"type": "integer"},
                "cacheMisses": {"type": "integer"},
                "requestsTotal": {"type": "integer"},
                "averageRequestDurationMs": {"type": "number"},
                "dbQueryCount": {"type": "integer"},
                "averageDbQueryDurationMs": {"type": "number"},
                "syncsTotal": {"type": "integer"},
                "syncFailures": {"type": "integer"},
                "goroutines": {"type": "integer"},
                "generatedAt": {"type": "string", "format": "date-time"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
