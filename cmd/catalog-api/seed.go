package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/academic-catalog-api/internal/dto"
	"github.com/noah-isme/academic-catalog-api/internal/service"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin user and load a catalog",
	Long: `Upserts the admin user from SEED_ADMIN_USERNAME and SEED_ADMIN_PASSWORD,
then syncs the built-in catalog, or the tree in --file (JSON or YAML).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		decoder := service.NewCatalogDecoder(nil)

		var years []dto.YearNode
		if seedFile != "" {
			var err error
			if years, err = loadCatalogFile(seedFile, decoder); err != nil {
				return err
			}
		}

		db, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		a := newApp(cfg, logr, db, nil)
		seeder := service.NewSeedService(a.users, a.catalog, logr)

		if _, err := seeder.SeedAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword); err != nil {
			return err
		}
		result, err := seeder.SeedCatalog(ctx, years)
		if err != nil {
			return err
		}
		logr.Info("catalog seeded", zap.Any("synced", result))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "catalog tree to load instead of the built-in one (.json, .yaml, .yml)")
}

func loadCatalogFile(path string, decoder *service.CatalogDecoder) ([]dto.YearNode, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return decoder.DecodeValue(doc)
	default:
		return decoder.Decode(raw)
	}
}
