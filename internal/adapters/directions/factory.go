package directions

import (
	"kr-eta-service/internal/ports"
	"net/http"
)

// Factory binds a shared HTTP client and options; each call yields a fresh
// client for one route.
func Factory(session *http.Client, opts Options) ports.DirectionsFactory {
	return func(apiKey string) (ports.DirectionsClient, error) {
		return NewKakaoNavi(apiKey, session, opts)
	}
}
