package handlers

import (
	"net/http"

	"cbrne_dashboard/internal/filter"
	"cbrne_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

type openSessionRequest struct {
	View string `json:"view"`
}

type toggleRequest struct {
	Facet string `json:"facet" binding:"required"`
	Value string `json:"value"`
}

// dateRangeRequest keeps a bound unchanged when its key is omitted; an empty
// string clears it.
type dateRangeRequest struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

type quickRangeRequest struct {
	Token string `json:"token" binding:"required"`
}

type snapshotResponse struct {
	Snapshot      filter.Snapshot `json:"snapshot"`
	ActiveFilters int             `json:"active_filters"`
}

func newSnapshotResponse(s filter.Snapshot) snapshotResponse {
	return snapshotResponse{Snapshot: s, ActiveFilters: s.ActiveFilterCount()}
}

// @Summary      Toolbar configuration
// @Description  Facet names, visibility flags, facet catalog and quick range shortcuts.
// @Tags         filters
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.Toolbar
// @Router       /api/v1/filters/config [get]
func (h *Handler) getToolbarConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Toolbar)
}

// @Summary      Open a filter session
// @Tags         filters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input  body      openSessionRequest  false  "view name"
// @Success      201    {object}  service.SessionInfo
// @Router       /api/v1/filters/sessions [post]
func (h *Handler) openSession(c *gin.Context) {
	var input openSessionRequest
	if c.Request.ContentLength != 0 {
		if ok := h.bindJSONOrBadRequest(c, &input); !ok {
			return
		}
	}
	c.JSON(http.StatusCreated, h.services.Open(input.View))
}

// @Summary      Get a filter session
// @Tags         filters
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "session id"
// @Success      200  {object}  service.SessionInfo
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/filters/sessions/{id} [get]
func (h *Handler) getSession(c *gin.Context) {
	info, err := h.services.Get(c.Param("id"))
	if err != nil {
		h.respondServiceError(c, "filter_session_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// @Summary      Close a filter session
// @Tags         filters
// @Security     BearerAuth
// @Param        id   path  string  true  "session id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/filters/sessions/{id} [delete]
func (h *Handler) closeSession(c *gin.Context) {
	if err := h.services.Close(c.Param("id")); err != nil {
		h.respondServiceError(c, "filter_session_close_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Toggle a facet value
// @Tags         filters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string         true  "session id"
// @Param        input  body      toggleRequest  true  "facet and value"
// @Success      200    {object}  snapshotResponse
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /api/v1/filters/sessions/{id}/toggle [post]
func (h *Handler) toggleFacet(c *gin.Context) {
	var input toggleRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	facet, err := filter.ParseFacet(input.Facet)
	if err != nil {
		h.respondServiceError(c, "filter_toggle_failed", err)
		return
	}

	snap, err := h.services.Toggle(c.Param("id"), facet, input.Value)
	if err != nil {
		h.respondServiceError(c, "filter_toggle_failed", err)
		return
	}
	c.JSON(http.StatusOK, newSnapshotResponse(snap))
}

// @Summary      Edit the date range
// @Description  Dates are YYYY-MM-DD. Omitted keys keep their bound, empty strings clear it.
// @Tags         filters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string            true  "session id"
// @Param        input  body      dateRangeRequest  true  "bounds"
// @Success      200    {object}  snapshotResponse
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /api/v1/filters/sessions/{id}/date-range [post]
func (h *Handler) setDateRange(c *gin.Context) {
	var input dateRangeRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	var params service.DateRangeParams
	var err error
	if params.Start, err = parseOptionalDate(input.Start); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start: " + err.Error()})
		return
	}
	if params.End, err = parseOptionalDate(input.End); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end: " + err.Error()})
		return
	}

	snap, err := h.services.SetDateRange(c.Param("id"), params)
	if err != nil {
		h.respondServiceError(c, "filter_date_range_failed", err)
		return
	}
	c.JSON(http.StatusOK, newSnapshotResponse(snap))
}

func parseOptionalDate(s *string) (*filter.Date, error) {
	if s == nil {
		return nil, nil
	}
	d, err := filter.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// @Summary      Apply a quick range
// @Tags         filters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string             true  "session id"
// @Param        input  body      quickRangeRequest  true  "shortcut token"
// @Success      200    {object}  snapshotResponse
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /api/v1/filters/sessions/{id}/quick-range [post]
func (h *Handler) selectQuickRange(c *gin.Context) {
	var input quickRangeRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	token, err := filter.ParseQuickRange(input.Token)
	if err != nil {
		h.respondServiceError(c, "filter_quick_range_failed", err)
		return
	}

	snap, err := h.services.SelectQuickRange(c.Param("id"), token)
	if err != nil {
		h.respondServiceError(c, "filter_quick_range_failed", err)
		return
	}
	c.JSON(http.StatusOK, newSnapshotResponse(snap))
}

// @Summary      Clear all filters
// @Tags         filters
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "session id"
// @Success      200  {object}  snapshotResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/filters/sessions/{id}/clear [post]
func (h *Handler) clearAll(c *gin.Context) {
	snap, err := h.services.ClearAll(c.Param("id"))
	if err != nil {
		h.respondServiceError(c, "filter_clear_failed", err)
		return
	}
	c.JSON(http.StatusOK, newSnapshotResponse(snap))
}
