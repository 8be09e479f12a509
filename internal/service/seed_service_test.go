package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academic-catalog-api/internal/dto"
	"github.com/noah-isme/academic-catalog-api/internal/models"
)

func TestSeedServiceSeedAdminHashesPassword(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewSeedService(repo, nil, zap.NewNop())
	svc.cost = bcrypt.MinCost

	user, err := svc.SeedAdmin(context.Background(), " admin ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))

	again, err := svc.SeedAdmin(context.Background(), "admin", "changed")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Len(t, repo.users, 1)

	_, err = svc.SeedAdmin(context.Background(), "admin", "")
	require.Error(t, err)
}

func TestSeedServiceDefaultCatalog(t *testing.T) {
	catalog := newMemCatalogRepo()
	svc := NewSeedService(newMockAuthRepo(), newCatalogServiceForTest(catalog), zap.NewNop())

	result, err := svc.SeedCatalog(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Years)
	assert.Equal(t, 2, result.Semesters)
	assert.Equal(t, 9, result.Units)

	years, modules, lessons := catalog.counts()
	assert.Equal(t, 3, years)
	// 6 shared + 3 + 3 in year 1, 20 unit + 2 standalone in year 2, 16 in year 3
	assert.Equal(t, 50, modules)
	assert.Equal(t, 150, lessons)
	assert.Len(t, catalog.edgeSet(), 18)
}

func TestSeedServiceUsesProvidedYears(t *testing.T) {
	catalog := newMemCatalogRepo()
	svc := NewSeedService(newMockAuthRepo(), newCatalogServiceForTest(catalog), zap.NewNop())

	result, err := svc.SeedCatalog(context.Background(), []dto.YearNode{{ID: "year-9", Structure: models.YearStructureUnits}})
	require.NoError(t, err)
	assert.Equal(t, dto.SyncResult{Years: 1}, result)
}

func TestDefaultCatalogPassesValidation(t *testing.T) {
	decoder := NewCatalogDecoder(nil)
	for i, year := range DefaultCatalog() {
		require.NoError(t, decoder.validator.Struct(year), i)
	}
}
