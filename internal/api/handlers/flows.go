package handlers

import (
	"kr-eta-service/internal/api/dto"
	"kr-eta-service/internal/services/wizard"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FlowHandler struct {
	Flows  *wizard.Flows
	Logger *zap.Logger
}

// Start handles POST /flows.
func (h *FlowHandler) Start(c *gin.Context) {
	var req dto.StartFlowRequest
	if !decodeJSON(c, &req) {
		return
	}

	res, err := h.Flows.Start(c.Request.Context(), wizard.StepInput{
		GeocodingAPIKey:  req.GeocodingAPIKey,
		DirectionsAPIKey: req.DirectionsAPIKey,
	})
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}

	writeJSON(c, http.StatusCreated, flowResponse(res))
}

// Step handles POST /flows/:flow_id.
func (h *FlowHandler) Step(c *gin.Context) {
	var req dto.StepRequest
	if !decodeJSON(c, &req) {
		return
	}

	res, err := h.Flows.Advance(c.Request.Context(), c.Param("flow_id"), wizard.StepInput{
		GeocodingAPIKey:  req.GeocodingAPIKey,
		DirectionsAPIKey: req.DirectionsAPIKey,
		Name:             req.Name,
		Address:          req.Address,
		AddWaypoint:      req.AddWaypoint,
	})
	if err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}

	writeJSON(c, http.StatusOK, flowResponse(res))
}

// Abandon handles DELETE /flows/:flow_id.
func (h *FlowHandler) Abandon(c *gin.Context) {
	if err := h.Flows.Abandon(c.Request.Context(), c.Param("flow_id")); err != nil {
		writeServiceError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func flowResponse(res wizard.StepResult) dto.FlowResponse {
	errs := res.Errors
	if errs == nil {
		errs = map[string]string{}
	}
	return dto.FlowResponse{
		FlowID:  res.Session.ID,
		StepID:  string(res.Session.State),
		Errors:  errs,
		EntryID: res.Session.EntryID,
		Done:    res.Done(),
		Route:   res.Route,
	}
}
