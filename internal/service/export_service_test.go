package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/campusdesk-api/internal/dto"
	"github.com/campusdesk/campusdesk-api/internal/models"
	appErrors "github.com/campusdesk/campusdesk-api/pkg/errors"
)

type mockComplaintLister struct {
	details []dto.ComplaintDetail
	filter  models.ComplaintFilter
}

func (m *mockComplaintLister) List(ctx context.Context, filter models.ComplaintFilter) ([]dto.ComplaintDetail, error) {
	m.filter = filter
	return m.details, nil
}

func exportFixture() []dto.ComplaintDetail {
	resolvedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return []dto.ComplaintDetail{
		{
			Complaint: models.Complaint{
				Title:         "Broken projector",
				Category:      models.CategoryInfrastructure,
				Status:        models.StatusResolved,
				AdminResponse: "Replaced the bulb",
				ResolvedAt:    &resolvedAt,
				CreatedAt:     resolvedAt.Add(-48 * time.Hour),
			},
			Student: dto.StudentRef{Name: "Asha", Email: "asha@example.com"},
		},
	}
}

func TestExportComplaintsCSV(t *testing.T) {
	lister := &mockComplaintLister{details: exportFixture()}
	svc := NewExportService(lister, zap.NewNop())

	result, err := svc.Complaints(context.Background(), adminActor, models.ComplaintFilter{Status: "Resolved"}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "complaints-"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
	assert.Equal(t, "Resolved", lister.filter.Status)

	content := string(result.Content)
	assert.Contains(t, content, "Title,Category,Status,Student,Email,Response,Created,Resolved")
	assert.Contains(t, content, "Broken projector")
	assert.Contains(t, content, "asha@example.com")
}

func TestExportComplaintsPDF(t *testing.T) {
	svc := NewExportService(&mockComplaintLister{details: exportFixture()}, zap.NewNop())

	result, err := svc.Complaints(context.Background(), adminActor, models.ComplaintFilter{}, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportComplaintsUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockComplaintLister{}, zap.NewNop())

	_, err := svc.Complaints(context.Background(), adminActor, models.ComplaintFilter{}, ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportComplaintsForbiddenForStudent(t *testing.T) {
	svc := NewExportService(&mockComplaintLister{}, zap.NewNop())

	_, err := svc.Complaints(context.Background(), studentActor, models.ComplaintFilter{}, FormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
