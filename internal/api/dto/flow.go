package dto

import "kr-eta-service/internal/domain"

type StartFlowRequest struct {
	GeocodingAPIKey  string `json:"geocoding_api_key"`
	DirectionsAPIKey string `json:"directions_api_key"`
}

// StepRequest carries the form of any step; fields that do not belong to the
// current step are ignored.
type StepRequest struct {
	GeocodingAPIKey  string `json:"geocoding_api_key"`
	DirectionsAPIKey string `json:"directions_api_key"`
	Name             string `json:"name"`
	Address          string `json:"address"`
	AddWaypoint      bool   `json:"add_waypoint"`
}

type FlowResponse struct {
	FlowID  string            `json:"flow_id"`
	StepID  string            `json:"step_id"`
	Errors  map[string]string `json:"errors"`
	EntryID string            `json:"entry_id,omitempty"`
	Done    bool              `json:"done"`
	Route   *domain.Route     `json:"route,omitempty"`
}
