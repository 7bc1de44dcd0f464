package geocode

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/shelterfinder/shelterfinder/internal/models"
)

// Client converts a postal address into a GeoJSON point. A nil point with a
// nil error means the lookup was skipped or produced no usable result; the
// caller persists the record without coordinates in that case.
type Client interface {
	Geocode(ctx context.Context, address string) (*models.GeoPoint, error)
	IsConfigured() bool
}

type googleClient struct {
	http   *resty.Client
	apiKey string
	log    *zap.SugaredLogger
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func NewClient(apiKey, baseURL string, log *zap.SugaredLogger) Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)
	return &googleClient{http: httpClient, apiKey: apiKey, log: log}
}

func (c *googleClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *googleClient) Geocode(ctx context.Context, address string) (*models.GeoPoint, error) {
	if !c.IsConfigured() {
		c.log.Warn("Geocoding API key is missing, skipping geocoding")
		return nil, nil
	}

	var out geocodeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("address", address).
		SetQueryParam("key", c.apiKey).
		SetResult(&out).
		Get("")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		c.log.Warnf("Geocoder returned HTTP %d for address %q", resp.StatusCode(), address)
		return nil, nil
	}
	if out.Status != "OK" || len(out.Results) == 0 {
		c.log.Warnf("Geocoding failed for address %q: %s %s", address, out.Status, out.ErrorMessage)
		return nil, nil
	}

	loc := out.Results[0].Geometry.Location
	return &models.GeoPoint{
		Type:             "Point",
		Coordinates:      []float64{loc.Lng, loc.Lat},
		FormattedAddress: out.Results[0].FormattedAddress,
	}, nil
}
