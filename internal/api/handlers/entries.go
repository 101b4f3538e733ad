package handlers

import (
	"kr-eta-service/internal/api/dto"
	"kr-eta-service/internal/ports"
	"kr-eta-service/internal/services/eta"
	"kr-eta-service/internal/services/wizard"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EntryHandler struct {
	Store  ports.RouteStore
	Poller *eta.Poller
	Logger *zap.Logger
}

// List handles GET /entries. Credentials are never returned.
func (h *EntryHandler) List(c *gin.Context) {
	entries, err := h.Store.ListEntries(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}

	res := dto.ListEntriesResponse{Entries: make([]dto.EntrySummary, 0, len(entries))}
	for _, e := range entries {
		res.Entries = append(res.Entries, dto.EntrySummary{
			EntryID:    e.ID,
			Title:      e.Title,
			RouteCount: len(e.Routes),
		})
	}
	writeJSON(c, http.StatusOK, res)
}

// Routes handles GET /entries/:entry_id/routes.
func (h *EntryHandler) Routes(c *gin.Context) {
	entry, err := h.Store.GetEntry(c.Request.Context(), c.Param("entry_id"))
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}

	writeJSON(c, http.StatusOK, dto.RouteListResponse{
		EntryID: entry.ID,
		Routes:  entry.Routes,
		Options: wizard.RemovalOptions(entry.Routes),
	})
}

// Remove handles POST /entries/:entry_id/routes/remove.
func (h *EntryHandler) Remove(c *gin.Context) {
	var req dto.RemoveRoutesRequest
	if !decodeJSON(c, &req) {
		return
	}

	entry, err := wizard.RemoveRoutes(c.Request.Context(), h.Store, c.Param("entry_id"), req.Indices)
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}

	writeJSON(c, http.StatusOK, dto.RouteListResponse{
		EntryID: entry.ID,
		Routes:  entry.Routes,
		Options: wizard.RemovalOptions(entry.Routes),
	})
}

// ETA handles GET /entries/:entry_id/routes/:route_id/eta.
// A failed poll still answers 200 with a null value.
func (h *EntryHandler) ETA(c *gin.Context) {
	entry, err := h.Store.GetEntry(c.Request.Context(), c.Param("entry_id"))
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}

	routeID := c.Param("route_id")
	for _, r := range entry.Routes {
		if r.ID == routeID {
			writeJSON(c, http.StatusOK, h.Poller.Poll(c.Request.Context(), entry, r))
			return
		}
	}
	writeError(c, http.StatusNotFound, "route not found")
}

// Poll handles POST /entries/:entry_id/poll.
func (h *EntryHandler) Poll(c *gin.Context) {
	entry, err := h.Store.GetEntry(c.Request.Context(), c.Param("entry_id"))
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}

	writeJSON(c, http.StatusOK, dto.PollResponse{
		EntryID:  entry.ID,
		Readings: h.Poller.PollEntry(c.Request.Context(), entry),
	})
}
