package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/campusdesk-api/internal/dto"
	"github.com/campusdesk/campusdesk-api/internal/middleware"
	"github.com/campusdesk/campusdesk-api/internal/models"
	"github.com/campusdesk/campusdesk-api/internal/service"
)

type stubComplaintRepo struct {
	complaints map[string]*models.Complaint
	listed     []dto.ComplaintDetail
	stats      *models.ComplaintStats
	categories []models.CategoryCount
}

func newStubComplaintRepo() *stubComplaintRepo {
	return &stubComplaintRepo{complaints: make(map[string]*models.Complaint), stats: &models.ComplaintStats{}}
}

func (s *stubComplaintRepo) Create(ctx context.Context, complaint *models.Complaint) error {
	complaint.ID = "c1"
	complaint.CreatedAt = time.Now().UTC()
	s.complaints[complaint.ID] = complaint
	return nil
}

func (s *stubComplaintRepo) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	if complaint, ok := s.complaints[id]; ok {
		copied := *complaint
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubComplaintRepo) FindDetailByID(ctx context.Context, id string) (*dto.ComplaintDetail, error) {
	if complaint, ok := s.complaints[id]; ok {
		return &dto.ComplaintDetail{Complaint: *complaint}, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubComplaintRepo) ListByStudent(ctx context.Context, studentID string) ([]dto.ComplaintDetail, error) {
	return s.listed, nil
}

func (s *stubComplaintRepo) List(ctx context.Context, filter models.ComplaintFilter) ([]dto.ComplaintDetail, error) {
	return s.listed, nil
}

func (s *stubComplaintRepo) Update(ctx context.Context, complaint *models.Complaint) error {
	s.complaints[complaint.ID] = complaint
	return nil
}

func (s *stubComplaintRepo) Stats(ctx context.Context) (*models.ComplaintStats, error) {
	return s.stats, nil
}

func (s *stubComplaintRepo) StatsByStudent(ctx context.Context, studentID string) (*models.ComplaintStats, error) {
	return s.stats, nil
}

func (s *stubComplaintRepo) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	return s.categories, nil
}

type stubUserReader struct {
	user *models.User
}

func (s *stubUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.user == nil {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func newComplaintHandler(repo *stubComplaintRepo) *ComplaintHandler {
	users := &stubUserReader{user: &models.User{ID: "u1", Name: "Asha", Email: "asha@example.com"}}
	svc := service.NewComplaintService(repo, users, nil, nil, time.Minute, nil, nil)
	exports := service.NewExportService(repo, nil)
	return NewComplaintHandler(svc, exports)
}

func testStudent() *models.User {
	return &models.User{ID: "u1", Name: "Asha", Role: models.RoleStudent, IsActive: true}
}

func testAdmin() *models.User {
	return &models.User{ID: "a1", Name: "Admin", Role: models.RoleAdmin, IsActive: true}
}

type envelope struct {
	// Data mirrors Envelope.Data (interface{} in production); list endpoints
	// carry an array there, so it is re-typed to a map only when the payload
	// is an object.
	RawData interface{}            `json:"data"`
	Data    map[string]interface{} `json:"-"`
	Error   map[string]interface{} `json:"error"`
	Count   *int                   `json:"count"`
	Meta    map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	env.Data, _ = env.RawData.(map[string]interface{})
	return env
}

func TestComplaintHandlerCreateRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newComplaintHandler(newStubComplaintRepo())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/complaints", strings.NewReader(`{}`))

	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestComplaintHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newComplaintHandler(newStubComplaintRepo())

	body := `{"title":"Broken projector","description":"Room 204 projector flickers","category":"Infrastructure"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/complaints", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, testStudent())

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Broken projector", env.Data["title"])
	assert.Equal(t, "Pending", env.Data["status"])
}

func TestComplaintHandlerCreateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newComplaintHandler(newStubComplaintRepo())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/complaints", strings.NewReader(`{"title":""`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, testStudent())

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComplaintHandlerGetForbiddenForOtherStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newStubComplaintRepo()
	repo.complaints["c1"] = &models.Complaint{ID: "c1", StudentID: "someone-else"}
	handler := newComplaintHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/complaints/c1", nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set(middleware.ContextUserKey, testStudent())

	handler.Get(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.NotNil(t, env.Error)
}

func TestComplaintHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newComplaintHandler(newStubComplaintRepo())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/complaints/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Set(middleware.ContextUserKey, testAdmin())

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComplaintHandlerListMineCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newStubComplaintRepo()
	repo.listed = []dto.ComplaintDetail{
		{Complaint: models.Complaint{ID: "c1", StudentID: "u1"}},
		{Complaint: models.Complaint{ID: "c2", StudentID: "u1"}},
	}
	handler := newComplaintHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/complaints/my-complaints", nil)
	c.Set(middleware.ContextUserKey, testStudent())

	handler.ListMine(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
}

func TestComplaintHandlerStatsMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newStubComplaintRepo()
	repo.stats = &models.ComplaintStats{Total: 4, Pending: 2, InProgress: 1, Resolved: 1}
	handler := newComplaintHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/complaints/stats", nil)
	c.Set(middleware.ContextUserKey, testAdmin())

	handler.Stats(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env.Meta["cache_hit"])
	assert.Equal(t, float64(4), env.Data["total"])
}

func TestComplaintHandlerUpdateStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newStubComplaintRepo()
	repo.complaints["c1"] = &models.Complaint{ID: "c1", StudentID: "u1", Status: models.StatusPending}
	handler := newComplaintHandler(repo)

	body := `{"status":"Resolved","admin_response":"Fixed"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/complaints/c1/status", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set(middleware.ContextUserKey, testAdmin())

	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Resolved", env.Data["status"])
	assert.NotEmpty(t, env.Data["resolved_at"])
}

func TestComplaintHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newStubComplaintRepo()
	repo.listed = []dto.ComplaintDetail{{Complaint: models.Complaint{Title: "Broken projector", Category: models.CategoryInfrastructure, Status: models.StatusPending}}}
	handler := newComplaintHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/complaints/export?format=csv", nil)
	c.Set(middleware.ContextUserKey, testAdmin())

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=complaints-")
	assert.Contains(t, rec.Body.String(), "Broken projector")
}
