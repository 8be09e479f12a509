package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academic-catalog-api/internal/dto"
	"github.com/noah-isme/academic-catalog-api/internal/models"
	appErrors "github.com/noah-isme/academic-catalog-api/pkg/errors"
)

const placeholder = "TO_BE_FILLED"

type seedUserRepository interface {
	UpsertByUsername(ctx context.Context, user *models.User) error
}

type catalogSyncer interface {
	Sync(ctx context.Context, years []dto.YearNode) (dto.SyncResult, error)
}

// SeedService provisions the administrator account and an initial catalog.
type SeedService struct {
	users   seedUserRepository
	catalog catalogSyncer
	logger  *zap.Logger
	cost    int
}

// NewSeedService constructs a SeedService.
func NewSeedService(users seedUserRepository, catalog catalogSyncer, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{users: users, catalog: catalog, logger: logger, cost: bcrypt.DefaultCost}
}

// SeedAdmin creates the admin user or resets its password.
func (s *SeedService) SeedAdmin(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "admin username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := s.users.UpsertByUsername(ctx, user); err != nil {
		return nil, appErrors.FromStorage(err, "failed to seed admin user")
	}
	s.logger.Info("admin user seeded", zap.String("username", username), zap.String("user_id", user.ID))
	return user, nil
}

// SeedCatalog syncs years, or the built-in catalog when years is empty.
func (s *SeedService) SeedCatalog(ctx context.Context, years []dto.YearNode) (dto.SyncResult, error) {
	if len(years) == 0 {
		years = DefaultCatalog()
	}
	return s.catalog.Sync(ctx, years)
}

// DefaultCatalog returns the starter catalog: a semester year with shared
// modules, a unit year with standalone modules, and a unit-only year.
func DefaultCatalog() []dto.YearNode {
	shared := make([]dto.ModuleNode, 0, 6)
	for i := 1; i <= 6; i++ {
		m := placeholderModule(fmt.Sprintf("mod-y1-shared-%03d", i))
		m.IsShared = true
		shared = append(shared, m)
	}
	semester := func(id, label string) dto.SemesterNode {
		modules := append([]dto.ModuleNode{}, shared...)
		for i := 1; i <= 3; i++ {
			modules = append(modules, placeholderModule(fmt.Sprintf("mod-y1-%s-%03d", id, i)))
		}
		return dto.SemesterNode{ID: id, Label: label, Modules: modules}
	}
	units := func(year, count int) []dto.UnitNode {
		nodes := make([]dto.UnitNode, 0, count)
		for u := 1; u <= count; u++ {
			modules := make([]dto.ModuleNode, 0, 4)
			for i := 1; i <= 4; i++ {
				modules = append(modules, placeholderModule(fmt.Sprintf("mod-u%d-%d-%03d", year, u, i)))
			}
			nodes = append(nodes, dto.UnitNode{ID: fmt.Sprintf("unit-%d-%d", year, u), Label: placeholder, Modules: modules})
		}
		return nodes
	}
	standalone := make([]dto.ModuleNode, 0, 2)
	for i := 1; i <= 2; i++ {
		m := placeholderModule(fmt.Sprintf("mod-standalone-%03d", i))
		m.IsStandalone = true
		standalone = append(standalone, m)
	}

	return []dto.YearNode{
		{
			ID:        "year-1",
			Label:     "السنة الأولى",
			Color:     "#0D9488",
			Icon:      "BookOpen",
			Structure: models.YearStructureSemesters,
			Semesters: []dto.SemesterNode{
				semester("s1", "الفصل الأول"),
				semester("s2", "الفصل الثاني"),
			},
		},
		{
			ID:                "year-2",
			Label:             "السنة الثانية",
			Color:             "#16A34A",
			Icon:              "FlaskConical",
			Structure:         models.YearStructureUnits,
			StandaloneModules: standalone,
			Units:             units(2, 5),
		},
		{
			ID:        "year-3",
			Label:     "السنة الثالثة",
			Color:     "#D97706",
			Icon:      "GraduationCap",
			Structure: models.YearStructureUnits,
			Units:     units(3, 4),
		},
	}
}

func placeholderModule(id string) dto.ModuleNode {
	m := dto.ModuleNode{ID: id, Title: placeholder}
	for i := 1; i <= 3; i++ {
		m.Lessons = append(m.Lessons, dto.ResourceNode{ID: fmt.Sprintf("les-%03d", i), Title: placeholder, DriveURL: placeholder})
	}
	for i := 1; i <= 2; i++ {
		m.Exams = append(m.Exams, dto.ResourceNode{ID: fmt.Sprintf("ex-%03d", i), Title: placeholder, DriveURL: placeholder})
	}
	return m
}
