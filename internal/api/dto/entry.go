package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"kr-eta-service/internal/domain"
	"kr-eta-service/internal/services/eta"
	"kr-eta-service/internal/services/wizard"
	"strconv"
)

type EntrySummary struct {
	EntryID    string `json:"entry_id"`
	Title      string `json:"title"`
	RouteCount int    `json:"route_count"`
}

type ListEntriesResponse struct {
	Entries []EntrySummary `json:"entries"`
}

type RouteListResponse struct {
	EntryID string                 `json:"entry_id"`
	Routes  []domain.Route         `json:"routes"`
	Options []wizard.RemovalOption `json:"options"`
}

type RemoveRoutesRequest struct {
	Indices IndexList `json:"indices"`
}

// IndexList accepts route indices as JSON numbers or strings.
type IndexList []string

func (l *IndexList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("indices: %w", err)
	}

	out := make(IndexList, 0, len(raw))
	for _, r := range raw {
		r = bytes.TrimSpace(r)
		if len(r) > 0 && r[0] == '"' {
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				return fmt.Errorf("indices: %w", err)
			}
			out = append(out, s)
			continue
		}

		var n json.Number
		if err := json.Unmarshal(r, &n); err != nil {
			return fmt.Errorf("indices: %w", err)
		}
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return fmt.Errorf("indices: %q is not an integer", n.String())
		}
		out = append(out, strconv.Itoa(i))
	}

	*l = out
	return nil
}

type PollResponse struct {
	EntryID  string        `json:"entry_id"`
	Readings []eta.Reading `json:"readings"`
}
