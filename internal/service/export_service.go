package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusdesk/campusdesk-api/internal/dto"
	"github.com/campusdesk/campusdesk-api/internal/models"
	"github.com/campusdesk/campusdesk-api/internal/policy"
	"github.com/campusdesk/campusdesk-api/pkg/export"
	appErrors "github.com/campusdesk/campusdesk-api/pkg/errors"
)

type complaintLister interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]dto.ComplaintDetail, error)
}

// ExportFormat names a supported export encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered export bytes with transport metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders admin complaint reports as CSV or PDF.
type ExportService struct {
	complaints complaintLister
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(complaints complaintLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		complaints: complaints,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

var exportHeaders = []string{"Title", "Category", "Status", "Student", "Email", "Response", "Created", "Resolved"}

// Complaints renders the filtered complaint list in the requested format.
func (s *ExportService) Complaints(ctx context.Context, actor models.Actor, filter models.ComplaintFilter, format ExportFormat) (*ExportResult, error) {
	if err := policy.CanListAllComplaints(actor); err != nil {
		return nil, err
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	details, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(details))}
	for _, d := range details {
		resolved := ""
		if d.ResolvedAt != nil {
			resolved = d.ResolvedAt.Format(time.RFC3339)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Title":    d.Title,
			"Category": string(d.Category),
			"Status":   string(d.Status),
			"Student":  d.Student.Name,
			"Email":    d.Student.Email,
			"Response": d.AdminResponse,
			"Created":  d.CreatedAt.Format(time.RFC3339),
			"Resolved": resolved,
		})
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("complaints-%s.csv", stamp),
		}, nil
	default:
		content, err := s.pdf.Render(dataset, "Complaint Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("complaints-%s.pdf", stamp),
		}, nil
	}
}
