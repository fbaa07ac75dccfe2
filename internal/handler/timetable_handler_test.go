package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Sai69186/ai-time-table-generator/internal/dto"
	internalmiddleware "github.com/Sai69186/ai-time-table-generator/internal/middleware"
	"github.com/Sai69186/ai-time-table-generator/internal/models"
	"github.com/Sai69186/ai-time-table-generator/internal/timetable"
	appErrors "github.com/Sai69186/ai-time-table-generator/pkg/errors"
)

type timetableSchedulerMock struct {
	captured     dto.GenerateTimetableRequest
	generateErr  error
	viewErr      error
	exportFormat string
}

func (m *timetableSchedulerMock) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	m.captured = req
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerateTimetableResponse{TimetableID: "tt-1", Saved: true, PlacedCount: 12, TotalRequirements: 12}, nil
}

func (m *timetableSchedulerMock) GetView(ctx context.Context, sectionID string) (*timetable.View, bool, error) {
	if m.viewErr != nil {
		return nil, false, m.viewErr
	}
	return &timetable.View{SectionID: sectionID, Days: map[string][]timetable.SlotView{}}, true, nil
}

func (m *timetableSchedulerMock) GetConflicts(ctx context.Context, timetableID string) (*dto.ConflictReport, error) {
	return &dto.ConflictReport{TimetableID: timetableID, Status: "clean"}, nil
}

func (m *timetableSchedulerMock) Export(ctx context.Context, timetableID, format string) ([]byte, string, string, error) {
	m.exportFormat = format
	if format == "csv" {
		return []byte("Day,Start\n"), "timetable-section-1.csv", "text/csv", nil
	}
	return []byte("%PDF"), "timetable-section-1.pdf", "application/pdf", nil
}

func (m *timetableSchedulerMock) RegenerateBranch(ctx context.Context, branchID string, req dto.RegenerateBranchRequest) (*dto.RegenerateBranchResponse, error) {
	return &dto.RegenerateBranchResponse{BranchID: branchID, Enqueued: 3}, nil
}

func (m *timetableSchedulerMock) Delete(ctx context.Context, sectionID string) error {
	return nil
}

func TestTimetableGenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableSchedulerMock{}
	handler := &TimetableHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(validGeneratePayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "section-1", mockSvc.captured.SectionID)
	require.True(t, mockSvc.captured.AllowPartial)
	require.Equal(t, "09:00", mockSvc.captured.Config.StartTime)
}

func TestTimetableGenerateInvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableSchedulerMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader([]byte(`{"section_id":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableGenerateServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableSchedulerMock{generateErr: appErrors.Clone(appErrors.ErrNotFound, "section not found")}
	handler := &TimetableHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(validGeneratePayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableGetViewNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableSchedulerMock{viewErr: appErrors.Clone(appErrors.ErrNotFound, "no timetable generated for this section")}
	handler := &TimetableHandler{service: mockSvc}
	router := gin.New()
	router.GET("/timetables/sections/:id", handler.GetView)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetables/sections/section-9", nil)

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableGetViewCacheMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableSchedulerMock{}}
	router := gin.New()
	router.Use(internalmiddleware.WithResponseMeta())
	router.GET("/timetables/sections/:id", handler.GetView)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetables/sections/section-1", nil)

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"cache_hit":true`)
	require.Contains(t, w.Body.String(), `"section-1"`)
}

func TestTimetableExportSetsDisposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableSchedulerMock{}
	handler := &TimetableHandler{service: mockSvc}
	router := gin.New()
	router.GET("/timetables/:id/export", handler.Export)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetables/tt-1/export?format=csv", nil)

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "csv", mockSvc.exportFormat)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "timetable-section-1.csv")
}

func TestTimetableRegenerateAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableSchedulerMock{}}
	router := gin.New()
	router.POST("/timetables/branches/:id/regenerate", handler.RegenerateBranch)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/timetables/branches/branch-1/regenerate", bytes.NewReader([]byte(`{"allow_partial":true}`)))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestTimetableGenerateUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableSchedulerMock{}}
	router := gin.New()
	router.POST("/timetables/generate", internalmiddleware.RBAC(string(models.RoleAdmin)), handler.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(validGeneratePayload()))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimetableGenerateForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableSchedulerMock{}}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
		c.Next()
	})
	router.POST("/timetables/generate", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), handler.Generate)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(validGeneratePayload()))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func validGeneratePayload() []byte {
	return []byte(`{"section_id":"section-1","allow_partial":true,"config":{"start_time":"09:00","end_time":"16:00","period_duration":50}}`)
}
