package wizard

import (
	"encoding/json"
	"fmt"
	"kr-eta-service/internal/domain"
)

// State names the step a session is waiting on. The values double as the
// step ids shown to the host.
type State string

const (
	StateAwaitingCredentials State = "user"
	StateAwaitingStart       State = "start_location"
	StateAwaitingEnd         State = "endpoint_location"
	StateAwaitingWaypoint    State = "waypoint_location"
	StateDone                State = "done"
)

// Session is everything a flow has collected so far. It is a plain value so
// the host can store it between steps; the geocoder is rebuilt from the
// credentials on every step.
type Session struct {
	ID          string             `json:"id"`
	EntryID     string             `json:"entry_id"`
	State       State              `json:"state"`
	Credentials domain.Credentials `json:"credentials"`
	Start       *domain.Location   `json:"start,omitempty"`
	End         *domain.Location   `json:"end,omitempty"`
	Waypoints   []domain.Location  `json:"waypoints"`
}

func (s Session) Encode() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session %q: %w", s.ID, err)
	}
	return b, nil
}

func DecodeSession(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if s.Waypoints == nil {
		s.Waypoints = []domain.Location{}
	}
	return s, nil
}

// StepInput is one submitted form. Only the fields of the current step are read.
type StepInput struct {
	GeocodingAPIKey  string
	DirectionsAPIKey string
	Name             string
	Address          string
	AddWaypoint      bool
}

func (in StepInput) hasCredentials() bool {
	return in.GeocodingAPIKey != "" || in.DirectionsAPIKey != ""
}

// StepResult is the session after a step. Errors maps "base" to an error tag
// when the same step is presented again. Route is set once the flow is done.
type StepResult struct {
	Session Session
	Errors  map[string]string
	Route   *domain.Route
}

func (r StepResult) Done() bool {
	return r.Session.State == StateDone
}

func reprompt(s Session, tag string) StepResult {
	return StepResult{Session: s, Errors: map[string]string{"base": tag}}
}
