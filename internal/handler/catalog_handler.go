package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-catalog-api/internal/dto"
	"github.com/noah-isme/academic-catalog-api/internal/middleware"
	"github.com/noah-isme/academic-catalog-api/internal/models"
	"github.com/noah-isme/academic-catalog-api/internal/service"
	appErrors "github.com/noah-isme/academic-catalog-api/pkg/errors"
	"github.com/noah-isme/academic-catalog-api/pkg/response"
)

type catalogService interface {
	Sync(ctx context.Context, years []dto.YearNode) (dto.SyncResult, error)
	Tree(ctx context.Context) ([]dto.YearNode, bool, error)
	CreateModule(ctx context.Context, req dto.CreateModuleRequest) (*models.Module, error)
	UpdateModule(ctx context.Context, id string, req dto.UpdateModuleRequest) (*models.Module, error)
	DeleteModule(ctx context.Context, id string) error
	AddModuleToSemester(ctx context.Context, semesterID string, req dto.AddSemesterModuleRequest) (*models.Module, error)
	AddResource(ctx context.Context, kind models.ResourceKind, moduleID string, req dto.AddResourceRequest) (*models.Resource, error)
	DeleteResource(ctx context.Context, kind models.ResourceKind, id, moduleID string) error
}

type catalogDecoder interface {
	Decode(raw []byte) ([]dto.YearNode, error)
}

type catalogExporter interface {
	Export(ctx context.Context, format string) (*service.ExportFile, error)
}

var errPayloadTooLarge = appErrors.New("PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge, "request body too large")

// CatalogHandler exposes the academic catalog endpoints.
type CatalogHandler struct {
	service  catalogService
	decoder  catalogDecoder
	exporter catalogExporter
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(svc catalogService, decoder catalogDecoder, exporter catalogExporter) *CatalogHandler {
	return &CatalogHandler{service: svc, decoder: decoder, exporter: exporter}
}

// GetTree godoc
// @Summary Read the academic catalog
// @Description Returns every year with its semesters, units, standalone modules, lessons and exams ordered by id
// @Tags Catalog
// @Produce json
// @Success 200 {array} dto.YearNode
// @Failure 500 {object} response.ErrorBody
// @Router /academic [get]
func (h *CatalogHandler) GetTree(c *gin.Context) {
	years, hit, err := h.service.Tree(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, years)
}

// Sync godoc
// @Summary Sync the academic catalog
// @Description Upserts the posted tree of years. Rows absent from the payload are kept.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body []dto.YearNode true "Years to upsert"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /academic/sync [post]
func (h *CatalogHandler) Sync(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, errPayloadTooLarge)
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidFormat.Code, appErrors.ErrInvalidFormat.Status, appErrors.ErrInvalidFormat.Message))
		return
	}

	years, err := h.decoder.Decode(raw)
	if err != nil {
		response.Error(c, err)
		return
	}

	// A sync runs to completion or fails on its own; a client disconnect must
	// not abort it between years.
	result, err := h.service.Sync(context.WithoutCancel(c.Request.Context()), years)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, response.Message{Message: "Sync successful", Synced: result})
}

// CreateModule godoc
// @Summary Create a module
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateModuleRequest true "Module payload"
// @Success 201 {object} models.Module
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /academic/modules [post]
func (h *CatalogHandler) CreateModule(c *gin.Context) {
	var req dto.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module payload"))
		return
	}
	module, err := h.service.CreateModule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, module)
}

// UpdateModule godoc
// @Summary Rename a module
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Param payload body dto.UpdateModuleRequest true "Module payload"
// @Success 200 {object} models.Module
// @Failure 404 {object} response.ErrorBody
// @Router /academic/modules/{id} [put]
func (h *CatalogHandler) UpdateModule(c *gin.Context) {
	var req dto.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module payload"))
		return
	}
	module, err := h.service.UpdateModule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module)
}

// DeleteModule godoc
// @Summary Delete a module with its lessons and exams
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 200 {object} map[string]bool
// @Router /academic/modules/{id} [delete]
func (h *CatalogHandler) DeleteModule(c *gin.Context) {
	if err := h.service.DeleteModule(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c)
}

// AddModuleToSemester godoc
// @Summary Create a module inside a semester
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param semesterId path string true "Semester ID"
// @Param payload body dto.AddSemesterModuleRequest false "Module payload"
// @Success 201 {object} models.Module
// @Failure 404 {object} response.ErrorBody
// @Router /academic/semesters/{semesterId}/modules [post]
func (h *CatalogHandler) AddModuleToSemester(c *gin.Context) {
	var req dto.AddSemesterModuleRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module payload"))
			return
		}
	}
	module, err := h.service.AddModuleToSemester(c.Request.Context(), c.Param("semesterId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, module)
}

// AddLesson godoc
// @Summary Add a lesson to a module
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "Module ID"
// @Param payload body dto.AddResourceRequest true "Lesson payload"
// @Success 200 {object} models.Resource
// @Failure 404 {object} response.ErrorBody
// @Router /academic/modules/{moduleId}/lessons [post]
func (h *CatalogHandler) AddLesson(c *gin.Context) {
	h.addResource(c, models.ResourceLesson)
}

// AddExam godoc
// @Summary Add an exam to a module
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "Module ID"
// @Param payload body dto.AddResourceRequest true "Exam payload"
// @Success 200 {object} models.Resource
// @Failure 404 {object} response.ErrorBody
// @Router /academic/modules/{moduleId}/exams [post]
func (h *CatalogHandler) AddExam(c *gin.Context) {
	h.addResource(c, models.ResourceExam)
}

func (h *CatalogHandler) addResource(c *gin.Context, kind models.ResourceKind) {
	var req dto.AddResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+string(kind)+" payload"))
		return
	}
	res, err := h.service.AddResource(c.Request.Context(), kind, c.Param("moduleId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// DeleteLesson godoc
// @Summary Delete a lesson
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Param moduleId query string false "Restrict to one module"
// @Success 200 {object} map[string]bool
// @Router /academic/lessons/{id} [delete]
func (h *CatalogHandler) DeleteLesson(c *gin.Context) {
	h.deleteResource(c, models.ResourceLesson)
}

// DeleteExam godoc
// @Summary Delete an exam
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param moduleId query string false "Restrict to one module"
// @Success 200 {object} map[string]bool
// @Router /academic/exams/{id} [delete]
func (h *CatalogHandler) DeleteExam(c *gin.Context) {
	h.deleteResource(c, models.ResourceExam)
}

func (h *CatalogHandler) deleteResource(c *gin.Context, kind models.ResourceKind) {
	if err := h.service.DeleteResource(c.Request.Context(), kind, c.Param("id"), c.Query("moduleId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c)
}

// Export godoc
// @Summary Export the catalog
// @Description Flattens the catalog into one row per lesson or exam
// @Tags Catalog
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Router /academic/export [get]
func (h *CatalogHandler) Export(c *gin.Context) {
	file, err := h.exporter.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
