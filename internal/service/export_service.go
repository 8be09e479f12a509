package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-catalog-api/internal/dto"
	"github.com/noah-isme/academic-catalog-api/pkg/export"
	appErrors "github.com/noah-isme/academic-catalog-api/pkg/errors"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var exportHeaders = []string{"Year", "Container", "Module", "Kind", "ID", "Title", "Drive URL"}

type catalogTreeSource interface {
	Tree(ctx context.Context) ([]dto.YearNode, bool, error)
}

type datasetRenderer interface {
	ContentType() string
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService flattens the catalog into tabular exports.
type ExportService struct {
	catalog catalogTreeSource
	csv     datasetRenderer
	pdf     datasetRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers use the defaults.
func NewExportService(catalog catalogTreeSource, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{catalog: catalog, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Export renders the whole catalog in the requested format.
func (s *ExportService) Export(ctx context.Context, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	var renderer datasetRenderer
	switch format {
	case ExportFormatCSV:
		renderer = s.csv
	case ExportFormatPDF:
		renderer = s.pdf
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	years, _, err := s.catalog.Tree(ctx)
	if err != nil {
		return nil, err
	}
	dataset := CatalogDataset(years)

	data, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("catalog exported", zap.String("format", format), zap.Int("rows", len(dataset.Rows)))

	return &ExportFile{
		Filename:    fmt.Sprintf("catalog-%s.%s", s.now().UTC().Format("20060102-150405"), format),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

// CatalogDataset flattens the tree to one row per lesson or exam.
func CatalogDataset(years []dto.YearNode) export.Dataset {
	dataset := export.Dataset{Title: "Academic Catalog", Headers: exportHeaders}
	addModules := func(year dto.YearNode, container string, modules []dto.ModuleNode) {
		for _, m := range modules {
			for _, kind := range []struct {
				name  string
				items []dto.ResourceNode
			}{{"lesson", m.Lessons}, {"exam", m.Exams}} {
				for _, r := range kind.items {
					dataset.Rows = append(dataset.Rows, map[string]string{
						"Year":      label(year.Label, year.ID),
						"Container": container,
						"Module":    label(m.Title, m.ID),
						"Kind":      kind.name,
						"ID":        r.ID,
						"Title":     r.Title,
						"Drive URL": r.DriveURL,
					})
				}
			}
		}
	}

	for _, year := range years {
		for _, sem := range year.Semesters {
			addModules(year, label(sem.Label, sem.ID), sem.Modules)
		}
		addModules(year, "standalone", year.StandaloneModules)
		for _, unit := range year.Units {
			addModules(year, label(unit.Label, unit.ID), unit.Modules)
		}
	}
	return dataset
}

func label(text, id string) string {
	if text == "" {
		return id
	}
	return text
}
