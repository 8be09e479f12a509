package dto

import "github.com/noah-isme/academic-catalog-api/internal/models"

// YearNode is a Year with its nested children. The same shape is accepted by
// sync and returned by the catalog read.
type YearNode struct {
	ID                string               `json:"id" mapstructure:"id" validate:"required"`
	Label             string               `json:"label" mapstructure:"label"`
	Color             string               `json:"color" mapstructure:"color"`
	Icon              string               `json:"icon" mapstructure:"icon"`
	Structure         models.YearStructure `json:"structure" mapstructure:"structure" validate:"required,oneof=semesters units"`
	Semesters         []SemesterNode       `json:"semesters" mapstructure:"semesters" validate:"dive"`
	Units             []UnitNode           `json:"units" mapstructure:"units" validate:"dive"`
	StandaloneModules []ModuleNode         `json:"standaloneModules" mapstructure:"standaloneModules" validate:"dive"`
}

// SemesterNode is a Semester with its modules.
type SemesterNode struct {
	ID      string       `json:"id" mapstructure:"id" validate:"required"`
	Label   string       `json:"label" mapstructure:"label"`
	Modules []ModuleNode `json:"modules" mapstructure:"modules" validate:"dive"`
}

// UnitNode is a Unit with its modules.
type UnitNode struct {
	ID      string       `json:"id" mapstructure:"id" validate:"required"`
	Label   string       `json:"label" mapstructure:"label"`
	Modules []ModuleNode `json:"modules" mapstructure:"modules" validate:"dive"`
}

// ModuleNode is a Module with its lessons and exams.
type ModuleNode struct {
	ID           string         `json:"id" mapstructure:"id" validate:"required"`
	Title        string         `json:"title" mapstructure:"title"`
	IsShared     bool           `json:"isShared" mapstructure:"isShared"`
	IsStandalone bool           `json:"isStandalone" mapstructure:"isStandalone"`
	Lessons      []ResourceNode `json:"lessons" mapstructure:"lessons" validate:"dive"`
	Exams        []ResourceNode `json:"exams" mapstructure:"exams" validate:"dive"`
}

// ResourceNode is a Lesson or Exam leaf.
type ResourceNode struct {
	ID       string `json:"id" mapstructure:"id" validate:"required"`
	Title    string `json:"title" mapstructure:"title"`
	DriveURL string `json:"driveUrl" mapstructure:"driveUrl"`
}

// SyncResult counts the rows upserted by one sync.
type SyncResult struct {
	Years     int `json:"years"`
	Semesters int `json:"semesters"`
	Units     int `json:"units"`
	Modules   int `json:"modules"`
	Lessons   int `json:"lessons"`
	Exams     int `json:"exams"`
}

// Add accumulates other into r.
func (r *SyncResult) Add(other SyncResult) {
	r.Years += other.Years
	r.Semesters += other.Semesters
	r.Units += other.Units
	r.Modules += other.Modules
	r.Lessons += other.Lessons
	r.Exams += other.Exams
}

// Counts returns the counters keyed by node kind.
func (r SyncResult) Counts() map[string]int {
	return map[string]int{
		"years":     r.Years,
		"semesters": r.Semesters,
		"units":     r.Units,
		"modules":   r.Modules,
		"lessons":   r.Lessons,
		"exams":     r.Exams,
	}
}

// CreateModuleRequest creates a module directly.
type CreateModuleRequest struct {
	ID               string  `json:"id"`
	Title            string  `json:"title" validate:"required"`
	IsShared         bool    `json:"isShared"`
	IsStandalone     bool    `json:"isStandalone"`
	UnitID           *string `json:"unitId"`
	StandaloneYearID *string `json:"standaloneYearId"`
}

// UpdateModuleRequest changes a module title.
type UpdateModuleRequest struct {
	Title string `json:"title" validate:"required"`
}

// AddSemesterModuleRequest creates a module linked to a semester.
type AddSemesterModuleRequest struct {
	Title    string `json:"title"`
	IsShared bool   `json:"isShared"`
}

// AddResourceRequest creates a lesson or exam under a module.
type AddResourceRequest struct {
	Title    string `json:"title" validate:"required"`
	DriveURL string `json:"driveUrl"`
}
