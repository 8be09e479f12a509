package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-catalog-api/internal/models"
)

const (
	upsertYearQuery = `INSERT INTO years (id, label, color, icon, structure, created_at, updated_at)
VALUES (:id, :label, :color, :icon, :structure, :created_at, :updated_at)
ON CONFLICT (id)
DO UPDATE SET label = EXCLUDED.label, color = EXCLUDED.color, icon = EXCLUDED.icon,
              structure = EXCLUDED.structure, updated_at = EXCLUDED.updated_at`

	upsertSemesterQuery = `INSERT INTO semesters (id, label, year_id, created_at, updated_at)
VALUES (:id, :label, :year_id, :created_at, :updated_at)
ON CONFLICT (id)
DO UPDATE SET label = EXCLUDED.label, year_id = EXCLUDED.year_id, updated_at = EXCLUDED.updated_at`

	upsertUnitQuery = `INSERT INTO units (id, label, year_id, created_at, updated_at)
VALUES (:id, :label, :year_id, :created_at, :updated_at)
ON CONFLICT (id)
DO UPDATE SET label = EXCLUDED.label, year_id = EXCLUDED.year_id, updated_at = EXCLUDED.updated_at`

	insertModuleColumns = `INSERT INTO modules (id, title, is_shared, is_standalone, unit_id, standalone_year_id, created_at, updated_at)
VALUES (:id, :title, :is_shared, :is_standalone, :unit_id, :standalone_year_id, :created_at, :updated_at)`

	// Semester placement leaves unit/standalone ownership untouched.
	upsertSemesterModuleQuery = insertModuleColumns + `
ON CONFLICT (id)
DO UPDATE SET title = EXCLUDED.title, is_shared = EXCLUDED.is_shared, is_standalone = FALSE,
              updated_at = EXCLUDED.updated_at`

	upsertStandaloneModuleQuery = insertModuleColumns + `
ON CONFLICT (id)
DO UPDATE SET title = EXCLUDED.title, is_shared = FALSE, is_standalone = TRUE, unit_id = NULL,
              standalone_year_id = EXCLUDED.standalone_year_id, updated_at = EXCLUDED.updated_at`

	upsertUnitModuleQuery = insertModuleColumns + `
ON CONFLICT (id)
DO UPDATE SET title = EXCLUDED.title, is_shared = FALSE, is_standalone = FALSE, standalone_year_id = NULL,
              unit_id = EXCLUDED.unit_id, updated_at = EXCLUDED.updated_at`

	ensureSemesterModuleQuery = `INSERT INTO semester_modules (semester_id, module_id) VALUES ($1, $2)
ON CONFLICT (semester_id, module_id) DO NOTHING`

	upsertResourceTemplate = `INSERT INTO %s (id, module_id, title, drive_url, created_at, updated_at)
VALUES (:id, :module_id, :title, :drive_url, :created_at, :updated_at)
ON CONFLICT (id, module_id)
DO UPDATE SET title = EXCLUDED.title, drive_url = EXCLUDED.drive_url, updated_at = EXCLUDED.updated_at`

	moduleColumns = `id, title, is_shared, is_standalone, unit_id, standalone_year_id, created_at, updated_at`
)

// CatalogRepository persists the Year → Semester/Unit → Module → Lesson/Exam tree.
type CatalogRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewCatalogRepository constructs a catalog repository. observer may be nil.
func NewCatalogRepository(db *sqlx.DB, observer QueryObserver) *CatalogRepository {
	return &CatalogRepository{db: db, observer: observer}
}

// WithinTx runs fn inside one transaction; every repository call made with
// the context passed to fn joins it.
func (r *CatalogRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withinTx(ctx, r.db, fn)
}

func (r *CatalogRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

func (r *CatalogRepository) namedExec(ctx context.Context, label, query string, arg interface{}) error {
	defer r.observe(label, time.Now())
	if _, err := sqlx.NamedExecContext(ctx, executor(ctx, r.db), query, arg); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

func stamp(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// UpsertYear inserts the year or updates its mutable fields in place.
func (r *CatalogRepository) UpsertYear(ctx context.Context, year *models.Year) error {
	stamp(&year.CreatedAt, &year.UpdatedAt)
	return r.namedExec(ctx, "upsert_year", upsertYearQuery, year)
}

// UpsertSemester inserts the semester or updates label and parent year.
func (r *CatalogRepository) UpsertSemester(ctx context.Context, semester *models.Semester) error {
	stamp(&semester.CreatedAt, &semester.UpdatedAt)
	return r.namedExec(ctx, "upsert_semester", upsertSemesterQuery, semester)
}

// UpsertUnit inserts the unit or updates label and parent year.
func (r *CatalogRepository) UpsertUnit(ctx context.Context, unit *models.Unit) error {
	stamp(&unit.CreatedAt, &unit.UpdatedAt)
	return r.namedExec(ctx, "upsert_unit", upsertUnitQuery, unit)
}

// UpsertModule inserts the module or updates the columns owned by placement.
func (r *CatalogRepository) UpsertModule(ctx context.Context, module *models.Module, placement models.ModulePlacement) error {
	stamp(&module.CreatedAt, &module.UpdatedAt)
	var query string
	switch placement {
	case models.PlacementSemester:
		query = upsertSemesterModuleQuery
	case models.PlacementStandalone:
		query = upsertStandaloneModuleQuery
	case models.PlacementUnit:
		query = upsertUnitModuleQuery
	default:
		return fmt.Errorf("upsert_module: unknown placement %d", placement)
	}
	return r.namedExec(ctx, "upsert_module", query, module)
}

// EnsureSemesterModule records the module↔semester edge if it is missing.
// Existing edges for the module are never removed.
func (r *CatalogRepository) EnsureSemesterModule(ctx context.Context, semesterID, moduleID string) error {
	defer r.observe("ensure_semester_module", time.Now())
	if _, err := executor(ctx, r.db).ExecContext(ctx, ensureSemesterModuleQuery, semesterID, moduleID); err != nil {
		return fmt.Errorf("ensure_semester_module: %w", err)
	}
	return nil
}

// UpsertResource inserts or updates a lesson or exam keyed by (id, module_id).
func (r *CatalogRepository) UpsertResource(ctx context.Context, kind models.ResourceKind, res *models.Resource) error {
	if !kind.Valid() {
		return fmt.Errorf("upsert_resource: unknown kind %q", kind)
	}
	stamp(&res.CreatedAt, &res.UpdatedAt)
	return r.namedExec(ctx, "upsert_"+string(kind), fmt.Sprintf(upsertResourceTemplate, kind.Table()), res)
}

// Snapshot loads every catalog row in a single read-only transaction, each
// table ordered by id.
func (r *CatalogRepository) Snapshot(ctx context.Context) (*models.CatalogSnapshot, error) {
	defer r.observe("catalog_snapshot", time.Now())

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	snap := &models.CatalogSnapshot{}
	queries := []struct {
		label string
		dest  interface{}
		query string
	}{
		{"years", &snap.Years, `SELECT id, label, color, icon, structure, created_at, updated_at FROM years ORDER BY id ASC`},
		{"semesters", &snap.Semesters, `SELECT id, label, year_id, created_at, updated_at FROM semesters ORDER BY id ASC`},
		{"units", &snap.Units, `SELECT id, label, year_id, created_at, updated_at FROM units ORDER BY id ASC`},
		{"modules", &snap.Modules, `SELECT ` + moduleColumns + ` FROM modules ORDER BY id ASC`},
		{"semester_modules", &snap.SemesterModules, `SELECT semester_id, module_id FROM semester_modules ORDER BY semester_id ASC, module_id ASC`},
		{"lessons", &snap.Lessons, `SELECT id, module_id, title, drive_url, created_at, updated_at FROM lessons ORDER BY id ASC, module_id ASC`},
		{"exams", &snap.Exams, `SELECT id, module_id, title, drive_url, created_at, updated_at FROM exams ORDER BY id ASC, module_id ASC`},
	}
	for _, q := range queries {
		if err := tx.SelectContext(ctx, q.dest, q.query); err != nil {
			return nil, fmt.Errorf("select %s: %w", q.label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return snap, nil
}

// FindModule returns a module by id or sql.ErrNoRows.
func (r *CatalogRepository) FindModule(ctx context.Context, id string) (*models.Module, error) {
	defer r.observe("find_module", time.Now())
	var module models.Module
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &module, `SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find module: %w", err)
	}
	return &module, nil
}

// SemesterExists reports whether a semester with id is stored.
func (r *CatalogRepository) SemesterExists(ctx context.Context, id string) (bool, error) {
	defer r.observe("semester_exists", time.Now())
	var exists bool
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &exists, `SELECT EXISTS (SELECT 1 FROM semesters WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("semester exists: %w", err)
	}
	return exists, nil
}

// CreateModule inserts a new module; an existing id is a unique violation.
func (r *CatalogRepository) CreateModule(ctx context.Context, module *models.Module) error {
	stamp(&module.CreatedAt, &module.UpdatedAt)
	return r.namedExec(ctx, "create_module", insertModuleColumns, module)
}

// UpdateModuleTitle changes a module title and returns the stored row, or
// sql.ErrNoRows when the module does not exist.
func (r *CatalogRepository) UpdateModuleTitle(ctx context.Context, id, title string) (*models.Module, error) {
	defer r.observe("update_module_title", time.Now())
	const query = `UPDATE modules SET title = $2, updated_at = $3 WHERE id = $1 RETURNING ` + moduleColumns
	var module models.Module
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &module, query, id, title, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update module title: %w", err)
	}
	return &module, nil
}

// DeleteModule removes a module with its semester edges, lessons and exams.
// It reports whether a module row was deleted.
func (r *CatalogRepository) DeleteModule(ctx context.Context, id string) (bool, error) {
	defer r.observe("delete_module", time.Now())
	var deleted bool
	err := r.WithinTx(ctx, func(ctx context.Context) error {
		exec := executor(ctx, r.db)
		for _, stmt := range []string{
			`DELETE FROM semester_modules WHERE module_id = $1`,
			`DELETE FROM lessons WHERE module_id = $1`,
			`DELETE FROM exams WHERE module_id = $1`,
		} {
			if _, err := exec.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("delete module children: %w", err)
			}
		}
		res, err := exec.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete module: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete module rows affected: %w", err)
		}
		deleted = affected > 0
		return nil
	})
	return deleted, err
}

// DeleteResources removes lessons or exams with the given id. An empty
// moduleID removes the id under every module.
func (r *CatalogRepository) DeleteResources(ctx context.Context, kind models.ResourceKind, id, moduleID string) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("delete_resource: unknown kind %q", kind)
	}
	defer r.observe("delete_"+string(kind), time.Now())

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, kind.Table())
	args := []interface{}{id}
	if moduleID != "" {
		query += ` AND module_id = $2`
		args = append(args, moduleID)
	}
	res, err := executor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", kind, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s rows affected: %w", kind, err)
	}
	return affected, nil
}
