package models

import "time"

// YearStructure declares how a year's content is presented. It is metadata
// only; it is not checked against the children a year actually has.
type YearStructure string

const (
	YearStructureSemesters YearStructure = "semesters"
	YearStructureUnits     YearStructure = "units"
)

// Year is the root of the catalog tree.
type Year struct {
	ID        string        `db:"id" json:"id"`
	Label     string        `db:"label" json:"label"`
	Color     string        `db:"color" json:"color"`
	Icon      string        `db:"icon" json:"icon"`
	Structure YearStructure `db:"structure" json:"structure"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}

// Semester groups modules inside a year using the "semesters" structure.
type Semester struct {
	ID        string    `db:"id" json:"id"`
	Label     string    `db:"label" json:"label"`
	YearID    string    `db:"year_id" json:"yearId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Unit groups modules inside a year using the "units" structure.
type Unit struct {
	ID        string    `db:"id" json:"id"`
	Label     string    `db:"label" json:"label"`
	YearID    string    `db:"year_id" json:"yearId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Module is a course unit. Its id is unique across the whole catalog.
// Semester membership lives in semester_modules; unit and standalone
// ownership are nullable columns.
type Module struct {
	ID               string    `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	IsShared         bool      `db:"is_shared" json:"isShared"`
	IsStandalone     bool      `db:"is_standalone" json:"isStandalone"`
	UnitID           *string   `db:"unit_id" json:"unitId,omitempty"`
	StandaloneYearID *string   `db:"standalone_year_id" json:"standaloneYearId,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// SemesterModule is one edge of the additive Module↔Semester association.
type SemesterModule struct {
	SemesterID string `db:"semester_id" json:"semesterId"`
	ModuleID   string `db:"module_id" json:"moduleId"`
}

// Resource is a Lesson or Exam row. Identity is the (ID, ModuleID) pair, so
// the same literal id can exist under several modules.
type Resource struct {
	ID        string    `db:"id" json:"id"`
	ModuleID  string    `db:"module_id" json:"moduleId"`
	Title     string    `db:"title" json:"title"`
	DriveURL  string    `db:"drive_url" json:"driveUrl"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ResourceKind selects the lessons or exams table.
type ResourceKind string

const (
	ResourceLesson ResourceKind = "lesson"
	ResourceExam   ResourceKind = "exam"
)

// Table returns the backing table name.
func (k ResourceKind) Table() string {
	if k == ResourceExam {
		return "exams"
	}
	return "lessons"
}

// IDPrefix is the prefix used for generated ids.
func (k ResourceKind) IDPrefix() string {
	if k == ResourceExam {
		return "ex"
	}
	return "les"
}

// Valid reports whether k names a known resource kind.
func (k ResourceKind) Valid() bool {
	return k == ResourceLesson || k == ResourceExam
}

// CatalogSnapshot holds every catalog row, each slice ordered by id.
type CatalogSnapshot struct {
	Years           []Year
	Semesters       []Semester
	Units           []Unit
	Modules         []Module
	SemesterModules []SemesterModule
	Lessons         []Resource
	Exams           []Resource
}

// ModulePlacement selects which ownership columns a module upsert writes.
type ModulePlacement int

const (
	// PlacementSemester sets is_shared from the payload and clears is_standalone.
	// Semester membership itself is recorded separately as an edge.
	PlacementSemester ModulePlacement = iota
	// PlacementStandalone marks the module standalone under a year.
	PlacementStandalone
	// PlacementUnit attaches the module to a unit.
	PlacementUnit
)
