package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/academic-catalog-api/internal/dto"
	"github.com/noah-isme/academic-catalog-api/internal/models"
	appErrors "github.com/noah-isme/academic-catalog-api/pkg/errors"
)

func newCatalogServiceForTest(repo *memCatalogRepo) *CatalogService {
	return NewCatalogService(repo, nil, NewMetricsService(), nil, zap.NewNop(), 0)
}

func resources(ids ...string) []dto.ResourceNode {
	nodes := make([]dto.ResourceNode, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, dto.ResourceNode{ID: id, Title: "title " + id, DriveURL: "https://drive/" + id})
	}
	return nodes
}

func exampleYears() []dto.YearNode {
	return []dto.YearNode{{
		ID: "year-1", Label: "Y1", Color: "#fff", Icon: "Book", Structure: models.YearStructureSemesters,
		Semesters: []dto.SemesterNode{{
			ID: "s1", Label: "S1",
			Modules: []dto.ModuleNode{{
				ID: "m1", Title: "M1",
				Lessons: []dto.ResourceNode{{ID: "l1", Title: "L1", DriveURL: "http://x"}},
				Exams:   []dto.ResourceNode{},
			}},
		}},
	}}
}

// mixedYears covers every placement, out of id order.
func mixedYears() []dto.YearNode {
	return []dto.YearNode{
		{
			ID: "year-2", Label: "Second", Structure: models.YearStructureUnits,
			StandaloneModules: []dto.ModuleNode{
				{ID: "mod-sa-2", Title: "Standalone B", IsStandalone: true, Lessons: resources("les-002", "les-001"), Exams: resources()},
				{ID: "mod-sa-1", Title: "Standalone A", IsStandalone: true, Lessons: resources(), Exams: resources("ex-001")},
			},
			Units: []dto.UnitNode{
				{ID: "unit-2-2", Label: "U2", Modules: []dto.ModuleNode{{ID: "mod-u2", Title: "Unit two", Lessons: resources("les-001"), Exams: resources()}}},
				{ID: "unit-2-1", Label: "U1", Modules: []dto.ModuleNode{{ID: "mod-u1", Title: "Unit one", Lessons: resources("les-001"), Exams: resources("ex-001")}}},
			},
		},
		{
			ID: "year-1", Label: "First", Color: "#0D9488", Icon: "BookOpen", Structure: models.YearStructureSemesters,
			Semesters: []dto.SemesterNode{
				{ID: "s2", Label: "S2", Modules: []dto.ModuleNode{
					{ID: "mod-shared", Title: "Shared", IsShared: true, Lessons: resources("les-001"), Exams: resources()},
				}},
				{ID: "s1", Label: "S1", Modules: []dto.ModuleNode{
					{ID: "mod-s1", Title: "Own", Lessons: resources("les-003", "les-001"), Exams: resources("ex-002", "ex-001")},
					{ID: "mod-shared", Title: "Shared", IsShared: true, Lessons: resources("les-001"), Exams: resources()},
				}},
			},
		},
	}
}

// normalize sorts every level by id and replaces nil lists with empty ones.
func normalize(years []dto.YearNode) []dto.YearNode {
	out := make([]dto.YearNode, len(years))
	copy(out, years)
	sortModules := func(mods []dto.ModuleNode) []dto.ModuleNode {
		res := append([]dto.ModuleNode{}, mods...)
		for i := range res {
			res[i].Lessons = sortResources(res[i].Lessons)
			res[i].Exams = sortResources(res[i].Exams)
		}
		sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
		return res
	}
	for i := range out {
		sems := append([]dto.SemesterNode{}, out[i].Semesters...)
		for j := range sems {
			sems[j].Modules = sortModules(sems[j].Modules)
		}
		sort.Slice(sems, func(a, b int) bool { return sems[a].ID < sems[b].ID })
		out[i].Semesters = sems

		units := append([]dto.UnitNode{}, out[i].Units...)
		for j := range units {
			units[j].Modules = sortModules(units[j].Modules)
		}
		sort.Slice(units, func(a, b int) bool { return units[a].ID < units[b].ID })
		out[i].Units = units

		out[i].StandaloneModules = sortModules(out[i].StandaloneModules)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortResources(items []dto.ResourceNode) []dto.ResourceNode {
	res := append([]dto.ResourceNode{}, items...)
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func TestCatalogServiceSyncExampleScenario(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	result, err := svc.Sync(ctx, exampleYears())
	require.NoError(t, err)
	assert.Equal(t, dto.SyncResult{Years: 1, Semesters: 1, Modules: 1, Lessons: 1}, result)

	tree, hit, err := svc.Tree(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, tree, 1)
	assert.Equal(t, "year-1", tree[0].ID)
	require.Len(t, tree[0].Semesters, 1)
	assert.Equal(t, "s1", tree[0].Semesters[0].ID)
	require.Len(t, tree[0].Semesters[0].Modules, 1)
	module := tree[0].Semesters[0].Modules[0]
	assert.Equal(t, "m1", module.ID)
	require.Len(t, module.Lessons, 1)
	assert.Equal(t, "l1", module.Lessons[0].ID)
	assert.NotNil(t, module.Exams)
	assert.Empty(t, module.Exams)
	assert.NotNil(t, tree[0].Units)
	assert.NotNil(t, tree[0].StandaloneModules)
}

func TestCatalogServiceSyncRoundTrip(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	input := mixedYears()
	_, err := svc.Sync(ctx, input)
	require.NoError(t, err)

	tree, _, err := svc.Tree(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(normalize(input), tree); diff != "" {
		t.Fatalf("read-back tree mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogServiceSyncIsIdempotent(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Sync(ctx, mixedYears())
	require.NoError(t, err)
	first, _, err := svc.Tree(ctx)
	require.NoError(t, err)

	_, err = svc.Sync(ctx, mixedYears())
	require.NoError(t, err)
	second, _, err := svc.Tree(ctx)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestCatalogServiceSyncIsNonDestructive(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Sync(ctx, exampleYears())
	require.NoError(t, err)

	trimmed := exampleYears()
	trimmed[0].Semesters[0].Modules[0].Lessons = nil
	trimmed[0].Semesters[0].Modules[0].Title = "Renamed"
	_, err = svc.Sync(ctx, trimmed)
	require.NoError(t, err)

	tree, _, err := svc.Tree(ctx)
	require.NoError(t, err)
	module := tree[0].Semesters[0].Modules[0]
	assert.Equal(t, "Renamed", module.Title)
	require.Len(t, module.Lessons, 1)
	assert.Equal(t, "l1", module.Lessons[0].ID)
}

func TestCatalogServiceSharedModuleAssociationsAccumulate(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	payload := func(semesterID string) []dto.YearNode {
		return []dto.YearNode{{
			ID: "year-1", Structure: models.YearStructureSemesters,
			Semesters: []dto.SemesterNode{{ID: semesterID, Modules: []dto.ModuleNode{{ID: "M", Title: "Shared", IsShared: true}}}},
		}}
	}
	_, err := svc.Sync(ctx, payload("S1"))
	require.NoError(t, err)
	_, err = svc.Sync(ctx, payload("S2"))
	require.NoError(t, err)

	edges := repo.edgeSet()
	assert.Contains(t, edges, models.SemesterModule{SemesterID: "S1", ModuleID: "M"})
	assert.Contains(t, edges, models.SemesterModule{SemesterID: "S2", ModuleID: "M"})

	tree, _, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree[0].Semesters, 2)
	for _, sem := range tree[0].Semesters {
		require.Len(t, sem.Modules, 1, sem.ID)
		assert.Equal(t, "M", sem.Modules[0].ID)
	}
}

func TestCatalogServiceLessonIDsAreScopedByModule(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	years := []dto.YearNode{{
		ID: "year-3", Structure: models.YearStructureUnits,
		Units: []dto.UnitNode{{ID: "unit-3-1", Modules: []dto.ModuleNode{
			{ID: "mod-A", Lessons: []dto.ResourceNode{{ID: "les-001", Title: "A"}}},
			{ID: "mod-B", Lessons: []dto.ResourceNode{{ID: "les-001", Title: "B"}}},
		}}},
	}}
	_, err := svc.Sync(ctx, years)
	require.NoError(t, err)

	_, _, lessons := repo.counts()
	assert.Equal(t, 2, lessons)

	tree, _, err := svc.Tree(ctx)
	require.NoError(t, err)
	modules := tree[0].Units[0].Modules
	require.Len(t, modules, 2)
	assert.Equal(t, "A", modules[0].Lessons[0].Title)
	assert.Equal(t, "B", modules[1].Lessons[0].Title)
}

func TestCatalogServiceUnitPlacementOverridesFlags(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Sync(ctx, []dto.YearNode{{
		ID: "y", Structure: models.YearStructureUnits,
		StandaloneModules: []dto.ModuleNode{{ID: "m", Title: "first"}},
	}})
	require.NoError(t, err)
	_, err = svc.Sync(ctx, []dto.YearNode{{
		ID: "y", Structure: models.YearStructureUnits,
		Units: []dto.UnitNode{{ID: "u", Modules: []dto.ModuleNode{{ID: "m", Title: "moved", IsShared: true}}}},
	}})
	require.NoError(t, err)

	stored, err := repo.FindModule(ctx, "m")
	require.NoError(t, err)
	assert.False(t, stored.IsShared)
	assert.False(t, stored.IsStandalone)
	require.NotNil(t, stored.UnitID)
	assert.Equal(t, "u", *stored.UnitID)
	assert.Nil(t, stored.StandaloneYearID)
}

func TestCatalogServiceStandalonePlacementLeavesUnit(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Sync(ctx, []dto.YearNode{{
		ID: "y", Structure: models.YearStructureUnits,
		Units: []dto.UnitNode{{ID: "u", Modules: []dto.ModuleNode{{ID: "m", Title: "first"}}}},
	}})
	require.NoError(t, err)
	_, err = svc.Sync(ctx, []dto.YearNode{{
		ID: "y", Structure: models.YearStructureUnits,
		StandaloneModules: []dto.ModuleNode{{ID: "m", Title: "moved"}},
	}})
	require.NoError(t, err)

	stored, err := repo.FindModule(ctx, "m")
	require.NoError(t, err)
	assert.True(t, stored.IsStandalone)
	assert.Nil(t, stored.UnitID)

	tree, _, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Units, 1)
	assert.Empty(t, tree[0].Units[0].Modules)
	require.Len(t, tree[0].StandaloneModules, 1)
	assert.Equal(t, "moved", tree[0].StandaloneModules[0].Title)
}

func TestBuildTreeSkipsStandaloneRowsUnderUnits(t *testing.T) {
	unitID, yearID := "u", "y"
	tree := BuildTree(&models.CatalogSnapshot{
		Years:   []models.Year{{ID: yearID}},
		Units:   []models.Unit{{ID: unitID, YearID: yearID}},
		Modules: []models.Module{{ID: "m", IsStandalone: true, UnitID: &unitID, StandaloneYearID: &yearID}},
	})
	require.Len(t, tree, 1)
	assert.Empty(t, tree[0].Units[0].Modules)
	assert.Len(t, tree[0].StandaloneModules, 1)
}

func TestCatalogServiceSyncFailureKeepsEarlierYears(t *testing.T) {
	repo := newMemCatalogRepo()
	repo.failOn["unit-b"] = errStorageDown
	metrics := NewMetricsService()
	svc := NewCatalogService(repo, nil, metrics, nil, zap.NewNop(), 0)
	ctx := context.Background()

	years := []dto.YearNode{
		{ID: "year-a", Structure: models.YearStructureSemesters, Semesters: []dto.SemesterNode{{ID: "s-a"}}},
		{ID: "year-b", Structure: models.YearStructureUnits, Units: []dto.UnitNode{{ID: "unit-b"}}},
		{ID: "year-c", Structure: models.YearStructureUnits},
	}
	result, err := svc.Sync(ctx, years)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrStorage.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Contains(t, appErr.Error(), "connection reset by peer")
	assert.Equal(t, 1, result.Years)

	tree, _, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "year-a", tree[0].ID)

	snapshot := metrics.Snapshot()
	assert.EqualValues(t, 1, snapshot.SyncsTotal)
	assert.EqualValues(t, 1, snapshot.SyncFailures)
}

func TestCatalogServiceConcurrentSyncsLastWriteWins(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	const writers = 8
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < writers; i++ {
		i := i
		g.Go(func() error {
			years := exampleYears()
			years[0].Label = fmt.Sprintf("writer-%d", i)
			years[0].Semesters[0].Modules[0].Title = fmt.Sprintf("writer-%d", i)
			_, err := svc.Sync(gctx, years)
			return err
		})
	}
	require.NoError(t, g.Wait())

	tree, _, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Semesters, 1)
	require.Len(t, tree[0].Semesters[0].Modules, 1)
	// every year is written in one transaction, so label and title come from the same writer
	assert.Equal(t, tree[0].Label, tree[0].Semesters[0].Modules[0].Title)
	assert.Len(t, tree[0].Semesters[0].Modules[0].Lessons, 1)
}

func TestCatalogServiceCreateModuleGeneratesID(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)

	module, err := svc.CreateModule(context.Background(), dto.CreateModuleRequest{Title: "Physiology"})
	require.NoError(t, err)
	assert.Regexp(t, `^mod-[0-9a-f-]{36}$`, module.ID)

	_, err = svc.CreateModule(context.Background(), dto.CreateModuleRequest{ID: module.ID, Title: "again"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestCatalogServiceCreateModuleValidation(t *testing.T) {
	svc := newCatalogServiceForTest(newMemCatalogRepo())

	_, err := svc.CreateModule(context.Background(), dto.CreateModuleRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCatalogServiceUpdateModule(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.UpdateModule(ctx, "missing", dto.UpdateModuleRequest{Title: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Sync(ctx, exampleYears())
	require.NoError(t, err)
	module, err := svc.UpdateModule(ctx, "m1", dto.UpdateModuleRequest{Title: "Updated"})
	require.NoError(t, err)
	assert.Equal(t, "Updated", module.Title)
}

func TestCatalogServiceAddModuleToSemester(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.AddModuleToSemester(ctx, "s1", dto.AddSemesterModuleRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Sync(ctx, exampleYears())
	require.NoError(t, err)
	module, err := svc.AddModuleToSemester(ctx, "s1", dto.AddSemesterModuleRequest{IsShared: true})
	require.NoError(t, err)
	assert.Equal(t, defaultModuleTitle, module.Title)
	assert.True(t, module.IsShared)
	assert.Contains(t, repo.edgeSet(), models.SemesterModule{SemesterID: "s1", ModuleID: module.ID})
}

func TestCatalogServiceResources(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.AddResource(ctx, models.ResourceLesson, "m1", dto.AddResourceRequest{Title: "Intro"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Sync(ctx, exampleYears())
	require.NoError(t, err)

	exam, err := svc.AddResource(ctx, models.ResourceExam, "m1", dto.AddResourceRequest{Title: "Final"})
	require.NoError(t, err)
	assert.Regexp(t, `^ex-`, exam.ID)
	assert.Equal(t, defaultDriveURL, exam.DriveURL)

	require.NoError(t, svc.DeleteResource(ctx, models.ResourceExam, exam.ID, ""))
	require.NoError(t, svc.DeleteResource(ctx, models.ResourceLesson, "l1", "m1"))

	tree, _, err := svc.Tree(ctx)
	require.NoError(t, err)
	module := tree[0].Semesters[0].Modules[0]
	assert.Empty(t, module.Lessons)
	assert.Empty(t, module.Exams)
}

func TestCatalogServiceDeleteModule(t *testing.T) {
	repo := newMemCatalogRepo()
	svc := newCatalogServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Sync(ctx, exampleYears())
	require.NoError(t, err)
	require.NoError(t, svc.DeleteModule(ctx, "m1"))
	require.NoError(t, svc.DeleteModule(ctx, "m1"))

	assert.Empty(t, repo.edgeSet())
	_, modules, lessons := repo.counts()
	assert.Zero(t, modules)
	assert.Zero(t, lessons)
}

type memCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	deleted []string
}

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	return nil
}

func (m *memCache) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if raw, ok := m.values[key]; ok {
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, err
		}
	}
	n++
	m.values[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (m *memCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

func TestCatalogServiceTreeUsesCache(t *testing.T) {
	repo := newMemCatalogRepo()
	cacheRepo := &memCache{values: map[string][]byte{}}
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, zap.NewNop(), true)
	svc := NewCatalogService(repo, cache, metrics, nil, zap.NewNop(), time.Minute)
	ctx := context.Background()

	_, err := svc.Sync(ctx, exampleYears())
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.deleted, treeCacheKey(0))

	first, hit, err := svc.Tree(ctx)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := svc.Tree(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, cmp.Diff(first, second))

	_, err = svc.UpdateModule(ctx, "m1", dto.UpdateModuleRequest{Title: "fresh"})
	require.NoError(t, err)
	third, hit, err := svc.Tree(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", third[0].Semesters[0].Modules[0].Title)

	snapshot := metrics.Snapshot()
	assert.EqualValues(t, 1, snapshot.CacheHits)
	assert.EqualValues(t, 2, snapshot.CacheMisses)
}

// pausingCatalogRepo holds the first Snapshot after it has read the store
// until release is closed.
type pausingCatalogRepo struct {
	*memCatalogRepo
	once    sync.Once
	taken   chan struct{}
	release chan struct{}
}

func (p *pausingCatalogRepo) Snapshot(ctx context.Context) (*models.CatalogSnapshot, error) {
	snap, err := p.memCatalogRepo.Snapshot(ctx)
	p.once.Do(func() {
		close(p.taken)
		<-p.release
	})
	return snap, err
}

func TestCatalogServiceTreeDropsSnapshotOverlappingSync(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := &pausingCatalogRepo{memCatalogRepo: newMemCatalogRepo(), taken: make(chan struct{}), release: make(chan struct{})}
	cacheRepo := &memCache{values: map[string][]byte{}}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewCatalogService(repo, cache, NewMetricsService(), nil, zap.NewNop(), time.Minute)
	ctx := context.Background()

	type treeResult struct {
		years []dto.YearNode
		err   error
	}
	done := make(chan treeResult, 1)
	go func() {
		years, _, err := svc.Tree(ctx)
		done <- treeResult{years: years, err: err}
	}()

	<-repo.taken
	_, err := svc.Sync(ctx, exampleYears())
	require.NoError(t, err)
	close(repo.release)

	stale := <-done
	require.NoError(t, stale.err)
	assert.Empty(t, stale.years)

	fresh, hit, err := svc.Tree(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, fresh, 1)
	assert.Equal(t, "year-1", fresh[0].ID)

	cached, hit, err := svc.Tree(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, cmp.Diff(fresh, cached))
}
