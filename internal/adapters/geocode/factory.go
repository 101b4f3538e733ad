package geocode

import (
	"kr-eta-service/internal/ports"
	"net/http"
)

func Factory(session *http.Client, opts Options) ports.GeocoderFactory {
	return func(apiKey string) (ports.Geocoder, error) {
		return NewVWorldGeocoder(apiKey, session, opts)
	}
}
