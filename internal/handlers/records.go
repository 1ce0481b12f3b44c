package handlers

import (
	"net/http"
	"time"

	"cbrne_dashboard/internal/filter"
	"cbrne_dashboard/internal/models"

	"github.com/gin-gonic/gin"
)

type ingestRecordRequest struct {
	Kind        string    `json:"kind" binding:"required"`
	BuildingID  string    `json:"building_id" binding:"required"`
	Status      string    `json:"status" binding:"required"`
	Severity    string    `json:"severity"`
	SensorType  string    `json:"sensor_type"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type visibleRecordsResponse struct {
	Snapshot filter.Snapshot           `json:"snapshot"`
	Count    int                       `json:"count"`
	Records  []models.MonitoringRecord `json:"records"`
}

// @Summary      Ingest a monitoring record
// @Description  Stores an incident, sensor reading or equipment event. occurred_at defaults to now.
// @Tags         records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input  body      ingestRecordRequest  true  "record"
// @Success      201    {object}  models.MonitoringRecord
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/records [post]
func (h *Handler) ingestRecord(c *gin.Context) {
	var input ingestRecordRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	rec, err := h.services.Ingest(c.Request.Context(), models.MonitoringRecord{
		Kind:        input.Kind,
		BuildingID:  input.BuildingID,
		Status:      input.Status,
		Severity:    input.Severity,
		SensorType:  input.SensorType,
		Description: input.Description,
		OccurredAt:  input.OccurredAt,
	})
	if err != nil {
		h.respondServiceError(c, "record_ingest_failed", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// @Summary      Records visible through a session's filters
// @Tags         records
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "session id"
// @Success      200  {object}  visibleRecordsResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/filters/sessions/{id}/records [get]
func (h *Handler) visibleRecords(c *gin.Context) {
	records, snap, err := h.services.Visible(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, "records_visible_failed", err)
		return
	}
	c.JSON(http.StatusOK, visibleRecordsResponse{Snapshot: snap, Count: len(records), Records: records})
}
