package domain

import (
	"testing"
)

func TestRemoveRoutes(t *testing.T) {
	routes := []Route{{ID: "r0"}, {ID: "r1"}, {ID: "r2"}}

	got := RemoveRoutes(routes, []int{1})

	if len(got) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(got))
	}
	if got[0].ID != "r0" || got[1].ID != "r2" {
		t.Fatalf("expected [r0 r2], got [%s %s]", got[0].ID, got[1].ID)
	}
	if len(routes) != 3 {
		t.Fatalf("input slice was modified: %d routes", len(routes))
	}
}

func TestRemoveRoutesIgnoresOutOfRange(t *testing.T) {
	routes := []Route{{ID: "r0"}, {ID: "r1"}}

	got := RemoveRoutes(routes, []int{-1, 5})
	if len(got) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(got))
	}

	got = RemoveRoutes(routes, []int{0, 1})
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %d routes", len(got))
	}
}

func TestCredentialsComplete(t *testing.T) {
	if (Credentials{GeocodingAPIKey: "g"}).Complete() {
		t.Fatal("credentials without directions key reported complete")
	}
	if !(Credentials{GeocodingAPIKey: "g", DirectionsAPIKey: "d"}).Complete() {
		t.Fatal("credentials with both keys reported incomplete")
	}
}
