package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sai69186/ai-time-table-generator/internal/dto"
	internalmiddleware "github.com/Sai69186/ai-time-table-generator/internal/middleware"
	"github.com/Sai69186/ai-time-table-generator/internal/service"
	"github.com/Sai69186/ai-time-table-generator/internal/timetable"
	appErrors "github.com/Sai69186/ai-time-table-generator/pkg/errors"
	"github.com/Sai69186/ai-time-table-generator/pkg/response"
)

type timetableScheduler interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	GetView(ctx context.Context, sectionID string) (*timetable.View, bool, error)
	GetConflicts(ctx context.Context, timetableID string) (*dto.ConflictReport, error)
	Export(ctx context.Context, timetableID, format string) ([]byte, string, string, error)
	RegenerateBranch(ctx context.Context, branchID string, req dto.RegenerateBranchRequest) (*dto.RegenerateBranchResponse, error)
	Delete(ctx context.Context, sectionID string) error
}

// TimetableHandler handles timetable generation and retrieval endpoints.
type TimetableHandler struct {
	service timetableScheduler
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate a timetable for a section
// @Description Runs the scheduling engine for the section and stores the result. When allow_partial is false any conflict discards the schedule.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}

	res, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// GetView godoc
// @Summary Get the rendered timetable for a section
// @Tags Timetables
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/sections/{id} [get]
func (h *TimetableHandler) GetView(c *gin.Context) {
	start := time.Now()
	view, cacheHit, err := h.service.GetView(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	internalmiddleware.SetCacheHit(c, cacheHit)
	meta := internalmiddleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, view, nil, meta)
}

// GetConflicts godoc
// @Summary List conflicts recorded for a timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/conflicts [get]
func (h *TimetableHandler) GetConflicts(c *gin.Context) {
	report, err := h.service.GetConflicts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Export a timetable as PDF or CSV
// @Tags Timetables
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Timetable ID"
// @Param format query string false "Export format (pdf or csv, default pdf)"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	payload, filename, contentType, err := h.service.Export(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// RegenerateBranch godoc
// @Summary Queue timetable regeneration for every section of a branch
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Branch ID"
// @Param payload body dto.RegenerateBranchRequest true "Regeneration request"
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetables/branches/{id}/regenerate [post]
func (h *TimetableHandler) RegenerateBranch(c *gin.Context) {
	var req dto.RegenerateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid regeneration payload"))
		return
	}

	res, err := h.service.RegenerateBranch(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, res, nil)
}

// DeleteForSection godoc
// @Summary Delete the stored timetable for a section
// @Tags Timetables
// @Produce json
// @Param id path string true "Section ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/sections/{id} [delete]
func (h *TimetableHandler) DeleteForSection(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
