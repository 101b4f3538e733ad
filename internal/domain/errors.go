package domain

import (
	"fmt"

	"github.com/go-errors/errors"
)

// Wizard error tags shown next to a re-presented step.
const (
	TagNeedAPIKeys     = "need_api_keys"
	TagNeedAddress     = "need_address"
	TagAddressNotFound = "address_not_found"
	TagMaxWaypoints    = "max_waypoints"
)

var (
	ErrMissingEndpoints = errors.New("startpoint or endpoint is not set")
	ErrEntryNotFound    = errors.New("entry not found")
	ErrSessionNotFound  = errors.New("wizard session not found")
	ErrUnknownState     = errors.New("unknown wizard state")
	ErrSessionDone      = errors.New("wizard session already finished")
)

// ValidationError is a missing or empty required field within one step.
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Tag)
}

type AddressNotFoundError struct {
	Address string
}

func (e *AddressNotFoundError) Error() string {
	return fmt.Sprintf("address not found: %s", e.Address)
}

// ProviderError is a well-formed response in which the provider reported failure.
// Status is set by the geocoder, Code by the directions client.
type ProviderError struct {
	Provider string
	Status   string
	Code     int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s api error: status=%s: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s api error: result_code=%d, result_msg=%s", e.Provider, e.Code, e.Message)
}

// TransportError covers timeouts, network failures, non-200 statuses and
// undecodable bodies.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status: %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type TooManyWaypointsError struct {
	Count int
	Max   int
}

func (e *TooManyWaypointsError) Error() string {
	return fmt.Sprintf("too many waypoints: %d (max %d)", e.Count, e.Max)
}
