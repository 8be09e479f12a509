package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lib/pq"

	"github.com/noah-isme/academic-catalog-api/internal/models"
)

type memTxKey struct{}

type resourceKey struct {
	id       string
	moduleID string
}

type memState struct {
	years     map[string]models.Year
	semesters map[string]models.Semester
	units     map[string]models.Unit
	modules   map[string]models.Module
	edges     map[models.SemesterModule]struct{}
	lessons   map[resourceKey]models.Resource
	exams     map[resourceKey]models.Resource
}

func newMemState() memState {
	return memState{
		years:     map[string]models.Year{},
		semesters: map[string]models.Semester{},
		units:     map[string]models.Unit{},
		modules:   map[string]models.Module{},
		edges:     map[models.SemesterModule]struct{}{},
		lessons:   map[resourceKey]models.Resource{},
		exams:     map[resourceKey]models.Resource{},
	}
}

func (s memState) clone() memState {
	c := newMemState()
	for k, v := range s.years {
		c.years[k] = v
	}
	for k, v := range s.semesters {
		c.semesters[k] = v
	}
	for k, v := range s.units {
		c.units[k] = v
	}
	for k, v := range s.modules {
		c.modules[k] = v
	}
	for k := range s.edges {
		c.edges[k] = struct{}{}
	}
	for k, v := range s.lessons {
		c.lessons[k] = v
	}
	for k, v := range s.exams {
		c.exams[k] = v
	}
	return c
}

// memCatalogRepo mirrors the Postgres upsert and foreign key behaviour of
// the catalog repository. A transaction holds the lock for its duration and
// restores the previous state on error.
type memCatalogRepo struct {
	mu     sync.Mutex
	state  memState
	failOn map[string]error
	writes int
}

func newMemCatalogRepo() *memCatalogRepo {
	return &memCatalogRepo{state: newMemState(), failOn: map[string]error{}}
}

var errFKViolation = &pq.Error{Code: "23503", Message: "insert or update violates foreign key constraint"}

func (m *memCatalogRepo) locked(ctx context.Context, fn func() error) error {
	if ctx.Value(memTxKey{}) == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	return fn()
}

func (m *memCatalogRepo) write(id string) error {
	m.writes++
	if err, ok := m.failOn[id]; ok {
		return err
	}
	return nil
}

func (m *memCatalogRepo) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := m.state.clone()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.state = saved
		return err
	}
	return nil
}

func (m *memCatalogRepo) UpsertYear(ctx context.Context, year *models.Year) error {
	return m.locked(ctx, func() error {
		if err := m.write(year.ID); err != nil {
			return err
		}
		m.state.years[year.ID] = *year
		return nil
	})
}

func (m *memCatalogRepo) UpsertSemester(ctx context.Context, semester *models.Semester) error {
	return m.locked(ctx, func() error {
		if err := m.write(semester.ID); err != nil {
			return err
		}
		if _, ok := m.state.years[semester.YearID]; !ok {
			return errFKViolation
		}
		m.state.semesters[semester.ID] = *semester
		return nil
	})
}

func (m *memCatalogRepo) UpsertUnit(ctx context.Context, unit *models.Unit) error {
	return m.locked(ctx, func() error {
		if err := m.write(unit.ID); err != nil {
			return err
		}
		if _, ok := m.state.years[unit.YearID]; !ok {
			return errFKViolation
		}
		m.state.units[unit.ID] = *unit
		return nil
	})
}

func (m *memCatalogRepo) UpsertModule(ctx context.Context, module *models.Module, placement models.ModulePlacement) error {
	return m.locked(ctx, func() error {
		if err := m.write(module.ID); err != nil {
			return err
		}
		existing, ok := m.state.modules[module.ID]
		if !ok {
			m.state.modules[module.ID] = *module
			return nil
		}
		existing.Title = module.Title
		switch placement {
		case models.PlacementSemester:
			existing.IsShared = module.IsShared
			existing.IsStandalone = false
		case models.PlacementStandalone:
			existing.IsShared = false
			existing.IsStandalone = true
			existing.StandaloneYearID = module.StandaloneYearID
			existing.UnitID = nil
		case models.PlacementUnit:
			existing.IsShared = false
			existing.IsStandalone = false
			existing.UnitID = module.UnitID
			existing.StandaloneYearID = nil
		default:
			return fmt.Errorf("unknown placement %d", placement)
		}
		m.state.modules[module.ID] = existing
		return nil
	})
}

func (m *memCatalogRepo) EnsureSemesterModule(ctx context.Context, semesterID, moduleID string) error {
	return m.locked(ctx, func() error {
		if _, ok := m.state.semesters[semesterID]; !ok {
			return errFKViolation
		}
		if _, ok := m.state.modules[moduleID]; !ok {
			return errFKViolation
		}
		m.state.edges[models.SemesterModule{SemesterID: semesterID, ModuleID: moduleID}] = struct{}{}
		return nil
	})
}

func (m *memCatalogRepo) resources(kind models.ResourceKind) map[resourceKey]models.Resource {
	if kind == models.ResourceExam {
		return m.state.exams
	}
	return m.state.lessons
}

func (m *memCatalogRepo) UpsertResource(ctx context.Context, kind models.ResourceKind, res *models.Resource) error {
	return m.locked(ctx, func() error {
		if err := m.write(res.ID + "@" + res.ModuleID); err != nil {
			return err
		}
		if _, ok := m.state.modules[res.ModuleID]; !ok {
			return errFKViolation
		}
		m.resources(kind)[resourceKey{res.ID, res.ModuleID}] = *res
		return nil
	})
}

func (m *memCatalogRepo) Snapshot(ctx context.Context) (*models.CatalogSnapshot, error) {
	snap := &models.CatalogSnapshot{}
	err := m.locked(ctx, func() error {
		for _, y := range m.state.years {
			snap.Years = append(snap.Years, y)
		}
		for _, s := range m.state.semesters {
			snap.Semesters = append(snap.Semesters, s)
		}
		for _, u := range m.state.units {
			snap.Units = append(snap.Units, u)
		}
		for _, mod := range m.state.modules {
			snap.Modules = append(snap.Modules, mod)
		}
		for e := range m.state.edges {
			snap.SemesterModules = append(snap.SemesterModules, e)
		}
		for _, l := range m.state.lessons {
			snap.Lessons = append(snap.Lessons, l)
		}
		for _, e := range m.state.exams {
			snap.Exams = append(snap.Exams, e)
		}
		return nil
	})
	sort.Slice(snap.Years, func(i, j int) bool { return snap.Years[i].ID < snap.Years[j].ID })
	sort.Slice(snap.Semesters, func(i, j int) bool { return snap.Semesters[i].ID < snap.Semesters[j].ID })
	sort.Slice(snap.Units, func(i, j int) bool { return snap.Units[i].ID < snap.Units[j].ID })
	sort.Slice(snap.Modules, func(i, j int) bool { return snap.Modules[i].ID < snap.Modules[j].ID })
	sort.Slice(snap.SemesterModules, func(i, j int) bool {
		a, b := snap.SemesterModules[i], snap.SemesterModules[j]
		if a.SemesterID != b.SemesterID {
			return a.SemesterID < b.SemesterID
		}
		return a.ModuleID < b.ModuleID
	})
	byIDThenModule := func(rows []models.Resource) func(i, j int) bool {
		return func(i, j int) bool {
			if rows[i].ID != rows[j].ID {
				return rows[i].ID < rows[j].ID
			}
			return rows[i].ModuleID < rows[j].ModuleID
		}
	}
	sort.Slice(snap.Lessons, byIDThenModule(snap.Lessons))
	sort.Slice(snap.Exams, byIDThenModule(snap.Exams))
	return snap, err
}

func (m *memCatalogRepo) FindModule(ctx context.Context, id string) (*models.Module, error) {
	var found *models.Module
	err := m.locked(ctx, func() error {
		mod, ok := m.state.modules[id]
		if !ok {
			return sql.ErrNoRows
		}
		found = &mod
		return nil
	})
	return found, err
}

func (m *memCatalogRepo) SemesterExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := m.locked(ctx, func() error {
		_, exists = m.state.semesters[id]
		return nil
	})
	return exists, err
}

func (m *memCatalogRepo) CreateModule(ctx context.Context, module *models.Module) error {
	return m.locked(ctx, func() error {
		if _, ok := m.state.modules[module.ID]; ok {
			return &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
		if module.UnitID != nil {
			if _, ok := m.state.units[*module.UnitID]; !ok {
				return errFKViolation
			}
		}
		m.state.modules[module.ID] = *module
		return nil
	})
}

func (m *memCatalogRepo) UpdateModuleTitle(ctx context.Context, id, title string) (*models.Module, error) {
	var updated *models.Module
	err := m.locked(ctx, func() error {
		mod, ok := m.state.modules[id]
		if !ok {
			return sql.ErrNoRows
		}
		mod.Title = title
		m.state.modules[id] = mod
		updated = &mod
		return nil
	})
	return updated, err
}

func (m *memCatalogRepo) DeleteModule(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := m.locked(ctx, func() error {
		_, deleted = m.state.modules[id]
		delete(m.state.modules, id)
		for e := range m.state.edges {
			if e.ModuleID == id {
				delete(m.state.edges, e)
			}
		}
		for k := range m.state.lessons {
			if k.moduleID == id {
				delete(m.state.lessons, k)
			}
		}
		for k := range m.state.exams {
			if k.moduleID == id {
				delete(m.state.exams, k)
			}
		}
		return nil
	})
	return deleted, err
}

func (m *memCatalogRepo) DeleteResources(ctx context.Context, kind models.ResourceKind, id, moduleID string) (int64, error) {
	var n int64
	err := m.locked(ctx, func() error {
		rows := m.resources(kind)
		for k := range rows {
			if k.id == id && (moduleID == "" || k.moduleID == moduleID) {
				delete(rows, k)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (m *memCatalogRepo) edgeSet() map[models.SemesterModule]struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone().edges
}

func (m *memCatalogRepo) counts() (years, modules, lessons int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.years), len(m.state.modules), len(m.state.lessons)
}

var errStorageDown = errors.New("connection reset by peer")
