package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Single-route entry data written before entries held a route list.
type legacyEntryData struct {
	StartPoint *Location  `json:"startpoint"`
	EndPoint   *Location  `json:"endpoint"`
	Waypoints  []Location `json:"waypoints"`
}

// DecodeStoredRoutes reads a persisted route list. Data in the older
// single-route shape is returned as a list of one route identified by legacyID;
// the caller rewrites it in the list shape on its next save.
func DecodeStoredRoutes(raw []byte, legacyID string) ([]Route, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Route{}, nil
	}

	if raw[0] == '[' {
		var routes []Route
		if err := json.Unmarshal(raw, &routes); err != nil {
			return nil, fmt.Errorf("decode routes: %w", err)
		}
		for i := range routes {
			if routes[i].Waypoints == nil {
				routes[i].Waypoints = []Location{}
			}
		}
		return routes, nil
	}

	var legacy legacyEntryData
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("decode legacy route: %w", err)
	}
	if legacy.StartPoint == nil || legacy.EndPoint == nil {
		return []Route{}, nil
	}

	waypoints := legacy.Waypoints
	if waypoints == nil {
		waypoints = []Location{}
	}
	return []Route{{
		ID:        legacyID,
		Start:     *legacy.StartPoint,
		End:       *legacy.EndPoint,
		Waypoints: waypoints,
	}}, nil
}

func EncodeRoutes(routes []Route) ([]byte, error) {
	if routes == nil {
		routes = []Route{}
	}
	b, err := json.Marshal(routes)
	if err != nil {
		return nil, fmt.Errorf("encode routes: %w", err)
	}
	return b, nil
}
