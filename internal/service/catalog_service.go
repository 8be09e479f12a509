package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-catalog-api/internal/dto"
	"github.com/noah-isme/academic-catalog-api/internal/models"
	appErrors "github.com/noah-isme/academic-catalog-api/pkg/errors"
)

const (
	// CatalogTreeCacheKey prefixes the assembled read tree, one entry per
	// generation.
	CatalogTreeCacheKey = "catalog:tree"
	// CatalogTreeGenKey counts catalog writes. Every write moves readers to a
	// fresh tree key, so a tree built from a snapshot taken before the write
	// can only land under a key nobody reads anymore.
	CatalogTreeGenKey = "catalog:tree:gen"

	defaultModuleTitle = "New module"
	defaultDriveURL    = "TO_BE_FILLED"
)

type catalogRepository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	UpsertYear(ctx context.Context, year *models.Year) error
	UpsertSemester(ctx context.Context, semester *models.Semester) error
	UpsertUnit(ctx context.Context, unit *models.Unit) error
	UpsertModule(ctx context.Context, module *models.Module, placement models.ModulePlacement) error
	EnsureSemesterModule(ctx context.Context, semesterID, moduleID string) error
	UpsertResource(ctx context.Context, kind models.ResourceKind, res *models.Resource) error
	Snapshot(ctx context.Context) (*models.CatalogSnapshot, error)
	FindModule(ctx context.Context, id string) (*models.Module, error)
	SemesterExists(ctx context.Context, id string) (bool, error)
	CreateModule(ctx context.Context, module *models.Module) error
	UpdateModuleTitle(ctx context.Context, id, title string) (*models.Module, error)
	DeleteModule(ctx context.Context, id string) (bool, error)
	DeleteResources(ctx context.Context, kind models.ResourceKind, id, moduleID string) (int64, error)
}

// CatalogService implements catalog sync, read and single-entity edits.
type CatalogService struct {
	repo      catalogRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewCatalogService constructs the catalog service. cache and metrics may be nil.
func NewCatalogService(repo catalogRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CatalogService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// Sync upserts every year subtree in payload order. Each year is written in
// its own transaction: a failure rolls back that year only and stops the
// walk, leaving earlier years committed. Nothing is ever deleted.
func (s *CatalogService) Sync(ctx context.Context, years []dto.YearNode) (dto.SyncResult, error) {
	start := time.Now()
	var total dto.SyncResult
	var syncErr error

	for i := range years {
		counts, err := s.syncYear(ctx, years[i])
		if err != nil {
			syncErr = appErrors.FromStorage(err, fmt.Sprintf("failed to sync year %s", years[i].ID))
			break
		}
		total.Add(counts)
		s.logger.Debug("catalog year synced", zap.String("year_id", years[i].ID), zap.Int("modules", counts.Modules))
	}

	if len(years) > 0 {
		s.invalidateTree(ctx)
	}
	s.metrics.ObserveSync(total.Counts(), syncErr, time.Since(start))

	if syncErr != nil {
		s.logger.Error("catalog sync failed", zap.Error(syncErr), zap.Int("years_committed", total.Years))
		return total, syncErr
	}
	s.logger.Info("catalog sync completed",
		zap.Int("years", total.Years),
		zap.Int("semesters", total.Semesters),
		zap.Int("units", total.Units),
		zap.Int("modules", total.Modules),
		zap.Int("lessons", total.Lessons),
		zap.Int("exams", total.Exams),
		zap.Duration("duration", time.Since(start)),
	)
	return total, nil
}

func (s *CatalogService) syncYear(ctx context.Context, node dto.YearNode) (dto.SyncResult, error) {
	var counts dto.SyncResult
	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		counts = dto.SyncResult{}
		year := &models.Year{ID: node.ID, Label: node.Label, Color: node.Color, Icon: node.Icon, Structure: node.Structure}
		if err := s.repo.UpsertYear(ctx, year); err != nil {
			return err
		}
		counts.Years++

		for _, semNode := range node.Semesters {
			semester := &models.Semester{ID: semNode.ID, Label: semNode.Label, YearID: node.ID}
			if err := s.repo.UpsertSemester(ctx, semester); err != nil {
				return err
			}
			counts.Semesters++
			for _, modNode := range semNode.Modules {
				module := &models.Module{ID: modNode.ID, Title: modNode.Title, IsShared: modNode.IsShared}
				if err := s.syncModule(ctx, module, models.PlacementSemester, modNode, &counts); err != nil {
					return err
				}
				if err := s.repo.EnsureSemesterModule(ctx, semNode.ID, modNode.ID); err != nil {
					return err
				}
			}
		}

		for _, modNode := range node.StandaloneModules {
			yearID := node.ID
			module := &models.Module{ID: modNode.ID, Title: modNode.Title, IsStandalone: true, StandaloneYearID: &yearID}
			if err := s.syncModule(ctx, module, models.PlacementStandalone, modNode, &counts); err != nil {
				return err
			}
		}

		for _, unitNode := range node.Units {
			unit := &models.Unit{ID: unitNode.ID, Label: unitNode.Label, YearID: node.ID}
			if err := s.repo.UpsertUnit(ctx, unit); err != nil {
				return err
			}
			counts.Units++
			for _, modNode := range unitNode.Modules {
				unitID := unitNode.ID
				module := &models.Module{ID: modNode.ID, Title: modNode.Title, UnitID: &unitID}
				if err := s.syncModule(ctx, module, models.PlacementUnit, modNode, &counts); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return counts, err
}

func (s *CatalogService) syncModule(ctx context.Context, module *models.Module, placement models.ModulePlacement, node dto.ModuleNode, counts *dto.SyncResult) error {
	if err := s.repo.UpsertModule(ctx, module, placement); err != nil {
		return err
	}
	counts.Modules++
	for _, lesson := range node.Lessons {
		res := &models.Resource{ID: lesson.ID, ModuleID: module.ID, Title: lesson.Title, DriveURL: lesson.DriveURL}
		if err := s.repo.UpsertResource(ctx, models.ResourceLesson, res); err != nil {
			return err
		}
		counts.Lessons++
	}
	for _, exam := range node.Exams {
		res := &models.Resource{ID: exam.ID, ModuleID: module.ID, Title: exam.Title, DriveURL: exam.DriveURL}
		if err := s.repo.UpsertResource(ctx, models.ResourceExam, res); err != nil {
			return err
		}
		counts.Exams++
	}
	return nil
}

// Tree returns the full catalog. The boolean reports a cache hit.
func (s *CatalogService) Tree(ctx context.Context) ([]dto.YearNode, bool, error) {
	gen, genErr := s.cache.Generation(ctx, CatalogTreeGenKey)
	key := treeCacheKey(gen)
	if genErr == nil {
		var cached []dto.YearNode
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, false, appErrors.FromStorage(err, "failed to load catalog")
	}
	tree := BuildTree(snap)

	if genErr == nil {
		_ = s.cache.Set(ctx, key, tree, s.cacheTTL)
	}
	return tree, false, nil
}

func treeCacheKey(gen int64) string {
	return fmt.Sprintf("%s:%d", CatalogTreeCacheKey, gen)
}

// BuildTree assembles year nodes from flat rows. Every level keeps the
// snapshot's id order and every list is non-nil.
func BuildTree(snap *models.CatalogSnapshot) []dto.YearNode {
	lessons := groupResources(snap.Lessons)
	exams := groupResources(snap.Exams)

	modulesByID := make(map[string]models.Module, len(snap.Modules))
	modulesByUnit := make(map[string][]models.Module)
	standaloneByYear := make(map[string][]models.Module)
	for _, m := range snap.Modules {
		modulesByID[m.ID] = m
		if m.UnitID != nil && !m.IsStandalone {
			modulesByUnit[*m.UnitID] = append(modulesByUnit[*m.UnitID], m)
		}
		if m.IsStandalone && m.StandaloneYearID != nil {
			standaloneByYear[*m.StandaloneYearID] = append(standaloneByYear[*m.StandaloneYearID], m)
		}
	}

	edges := make(map[string][]models.Module)
	for _, edge := range snap.SemesterModules {
		if m, ok := modulesByID[edge.ModuleID]; ok {
			edges[edge.SemesterID] = append(edges[edge.SemesterID], m)
		}
	}

	toNodes := func(mods []models.Module) []dto.ModuleNode {
		nodes := make([]dto.ModuleNode, 0, len(mods))
		for _, m := range mods {
			nodes = append(nodes, dto.ModuleNode{
				ID:           m.ID,
				Title:        m.Title,
				IsShared:     m.IsShared,
				IsStandalone: m.IsStandalone,
				Lessons:      nonNilResources(lessons[m.ID]),
				Exams:        nonNilResources(exams[m.ID]),
			})
		}
		return nodes
	}

	semestersByYear := make(map[string][]dto.SemesterNode)
	for _, sem := range snap.Semesters {
		semestersByYear[sem.YearID] = append(semestersByYear[sem.YearID], dto.SemesterNode{
			ID:      sem.ID,
			Label:   sem.Label,
			Modules: toNodes(edges[sem.ID]),
		})
	}
	unitsByYear := make(map[string][]dto.UnitNode)
	for _, unit := range snap.Units {
		unitsByYear[unit.YearID] = append(unitsByYear[unit.YearID], dto.UnitNode{
			ID:      unit.ID,
			Label:   unit.Label,
			Modules: toNodes(modulesByUnit[unit.ID]),
		})
	}

	years := make([]dto.YearNode, 0, len(snap.Years))
	for _, y := range snap.Years {
		semesters := semestersByYear[y.ID]
		if semesters == nil {
			semesters = []dto.SemesterNode{}
		}
		units := unitsByYear[y.ID]
		if units == nil {
			units = []dto.UnitNode{}
		}
		years = append(years, dto.YearNode{
			ID:                y.ID,
			Label:             y.Label,
			Color:             y.Color,
			Icon:              y.Icon,
			Structure:         y.Structure,
			Semesters:         semesters,
			Units:             units,
			StandaloneModules: toNodes(standaloneByYear[y.ID]),
		})
	}
	return years
}

func groupResources(rows []models.Resource) map[string][]dto.ResourceNode {
	grouped := make(map[string][]dto.ResourceNode)
	for _, r := range rows {
		grouped[r.ModuleID] = append(grouped[r.ModuleID], dto.ResourceNode{ID: r.ID, Title: r.Title, DriveURL: r.DriveURL})
	}
	return grouped
}

func nonNilResources(nodes []dto.ResourceNode) []dto.ResourceNode {
	if nodes == nil {
		return []dto.ResourceNode{}
	}
	return nodes
}

// CreateModule stores a new module. A missing id is generated.
func (s *CatalogService) CreateModule(ctx context.Context, req dto.CreateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}
	module := &models.Module{
		ID:               req.ID,
		Title:            req.Title,
		IsShared:         req.IsShared,
		IsStandalone:     req.IsStandalone,
		UnitID:           req.UnitID,
		StandaloneYearID: req.StandaloneYearID,
	}
	if module.ID == "" {
		module.ID = "mod-" + uuid.NewString()
	}
	if err := s.repo.CreateModule(ctx, module); err != nil {
		return nil, appErrors.FromStorage(err, "failed to create module")
	}
	s.invalidateTree(ctx)
	return module, nil
}

// UpdateModule changes a module's title.
func (s *CatalogService) UpdateModule(ctx context.Context, id string, req dto.UpdateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}
	module, err := s.repo.UpdateModuleTitle(ctx, id, req.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Module not found")
		}
		return nil, appErrors.FromStorage(err, "failed to update module")
	}
	s.invalidateTree(ctx)
	return module, nil
}

// DeleteModule removes a module and everything attached to it. Deleting an
// unknown id succeeds.
func (s *CatalogService) DeleteModule(ctx context.Context, id string) error {
	deleted, err := s.repo.DeleteModule(ctx, id)
	if err != nil {
		return appErrors.FromStorage(err, "failed to delete module")
	}
	if !deleted {
		s.logger.Debug("delete of unknown module", zap.String("module_id", id))
	}
	s.invalidateTree(ctx)
	return nil
}

// AddModuleToSemester creates a module and links it to an existing semester.
func (s *CatalogService) AddModuleToSemester(ctx context.Context, semesterID string, req dto.AddSemesterModuleRequest) (*models.Module, error) {
	module := &models.Module{
		ID:       "mod-" + uuid.NewString(),
		Title:    req.Title,
		IsShared: req.IsShared,
	}
	if module.Title == "" {
		module.Title = defaultModuleTitle
	}

	err := s.repo.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.repo.SemesterExists(ctx, semesterID)
		if err != nil {
			return err
		}
		if !exists {
			return appErrors.Clone(appErrors.ErrNotFound, "Semester not found")
		}
		if err := s.repo.CreateModule(ctx, module); err != nil {
			return err
		}
		return s.repo.EnsureSemesterModule(ctx, semesterID, module.ID)
	})
	if err != nil {
		return nil, appErrors.FromStorage(err, "failed to add module to semester")
	}
	s.invalidateTree(ctx)
	return module, nil
}

// AddResource creates a lesson or exam under a module with a generated id.
func (s *CatalogService) AddResource(ctx context.Context, kind models.ResourceKind, moduleID string, req dto.AddResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid %s payload", kind))
	}
	if _, err := s.repo.FindModule(ctx, moduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Module not found")
		}
		return nil, appErrors.FromStorage(err, "failed to load module")
	}

	res := &models.Resource{
		ID:       kind.IDPrefix() + "-" + uuid.NewString(),
		ModuleID: moduleID,
		Title:    req.Title,
		DriveURL: req.DriveURL,
	}
	if res.DriveURL == "" {
		res.DriveURL = defaultDriveURL
	}
	if err := s.repo.UpsertResource(ctx, kind, res); err != nil {
		return nil, appErrors.FromStorage(err, fmt.Sprintf("failed to create %s", kind))
	}
	s.invalidateTree(ctx)
	return res, nil
}

// DeleteResource removes lessons or exams with id. An empty moduleID removes
// the id under every module.
func (s *CatalogService) DeleteResource(ctx context.Context, kind models.ResourceKind, id, moduleID string) error {
	if _, err := s.repo.DeleteResources(ctx, kind, id, moduleID); err != nil {
		return appErrors.FromStorage(err, fmt.Sprintf("failed to delete %s", kind))
	}
	s.invalidateTree(ctx)
	return nil
}

func (s *CatalogService) invalidateTree(ctx context.Context) {
	gen, err := s.cache.Bump(ctx, CatalogTreeGenKey)
	if err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
		return
	}
	_ = s.cache.Invalidate(ctx, treeCacheKey(gen-1))
}
