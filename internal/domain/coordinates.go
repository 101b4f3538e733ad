package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Degree is a coordinate component in EPSG:4326 kept in the textual form the
// geocoding provider returned it in ("127.0" stays "127.0"), so that it is
// forwarded to the directions provider unchanged.
type Degree string

func DegreeFromFloat(f float64) Degree {
	return Degree(strconv.FormatFloat(f, 'f', -1, 64))
}

func (d Degree) String() string { return string(d) }

// Float64 parses the degree for callers that need arithmetic.
func (d Degree) Float64() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(d)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse degree %q: %w", string(d), err)
	}
	return f, nil
}

// Accepts both JSON numbers (127.1) and strings ("127.1").
func (d *Degree) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode degree: %w", err)
		}
		*d = Degree(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode degree: %w", err)
	}
	*d = Degree(n.String())
	return nil
}

func (d Degree) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

// Immutable point with an optional display label.
// X is longitude, Y is latitude. Address keeps the text the user typed, if any.
type Location struct {
	Name    *string `json:"name,omitempty"`
	Address string  `json:"address,omitempty"`
	X       Degree  `json:"x"`
	Y       Degree  `json:"y"`
}

func NewLocation(name string, x, y Degree) Location {
	n := name
	return Location{Name: &n, X: x, Y: y}
}

// NameOr returns the label, or fallback when the location has none.
func (l Location) NameOr(fallback string) string {
	if l.Name == nil || *l.Name == "" {
		return fallback
	}
	return *l.Name
}

// WithDefaultName returns a copy labelled fallback when the location has no name.
func (l Location) WithDefaultName(fallback string) Location {
	if l.Name != nil && *l.Name != "" {
		return l
	}
	n := fallback
	l.Name = &n
	return l
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%s: %s, %s)", l.NameOr(""), l.X, l.Y)
}
