package bildtext

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"k8s.io/klog/v2"
)

var nominatimURL = "https://nominatim.openstreetmap.org/reverse"

// userAgent identifies us to the geocoding service, per its usage policy.
var userAgent = "bildtext/2.1 (+https://github.com/arireddy/bildtext)"

// DefaultRetries is the total number of reverse geocoding attempts.
var DefaultRetries = 2

var (
	geocodeTimeout = 5 * time.Second
	retryPause     = 1 * time.Second
)

// Location is a human-readable reverse geocoding result.
type Location struct {
	City        string
	State       string
	Country     string
	Formatted   string
	FullAddress string
}

// nominatimResponse mirrors the fields we consume from the service.
// Nominatim reports unresolvable coordinates as HTTP 200 with an error
// field and nothing else.
type nominatimResponse struct {
	Error       string `json:"error"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Hamlet  string `json:"hamlet"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// Geocoder resolves coordinates to place names via Nominatim.
type Geocoder struct {
	client  *http.Client
	baseURL string
}

// NewGeocoder returns a Geocoder with the standard request timeout.
func NewGeocoder() *Geocoder {
	return &Geocoder{
		client:  &http.Client{Timeout: geocodeTimeout},
		baseURL: nominatimURL,
	}
}

// Reverse resolves lat/lon to a Location, trying up to retries total
// attempts with a short pause in between. Location enrichment is
// best-effort context for the caption prompt, so exhausted retries yield
// nil rather than an error.
func (g *Geocoder) Reverse(ctx context.Context, lat float64, lon float64, retries int) *Location {
	if retries < 1 {
		retries = DefaultRetries
	}

	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryPause)
		}

		loc, err := g.reverse(ctx, lat, lon)
		if err != nil {
			klog.V(1).Infof("reverse geocode attempt %d/%d: %v", attempt+1, retries, err)
			continue
		}

		return loc
	}

	return nil
}

func (g *Geocoder) reverse(ctx context.Context, lat float64, lon float64) (*Location, error) {
	v := url.Values{}
	v.Set("format", "jsonv2")
	v.Set("lat", fmt.Sprintf("%f", lat))
	v.Set("lon", fmt.Sprintf("%f", lon))
	v.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+v.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %s", resp.Status)
	}

	nr := nominatimResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if nr.Error != "" {
		return nil, fmt.Errorf("service: %s", nr.Error)
	}

	loc := parseLocation(nr)
	if loc.Formatted == "" {
		return nil, fmt.Errorf("no address in response")
	}

	return loc, nil
}

// parseLocation flattens a service response into a Location, preferring
// the smallest populated place name available.
func parseLocation(nr nominatimResponse) *Location {
	a := nr.Address

	city := a.City
	for _, alt := range []string{a.Town, a.Village, a.Hamlet} {
		if city != "" {
			break
		}
		city = alt
	}

	parts := []string{}
	for _, p := range []string{city, a.State, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	formatted := strings.Join(parts, ", ")
	if formatted == "" {
		formatted = nr.DisplayName
	}

	return &Location{
		City:        city,
		State:       a.State,
		Country:     a.Country,
		Formatted:   formatted,
		FullAddress: nr.DisplayName,
	}
}
