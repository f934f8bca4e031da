package maps

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gmaps "googlemaps.github.io/maps"
)

const metersPerMile = 1609.34

// Client resolves driving distance through the Google Maps Distance Matrix API
type Client struct {
	maps   *gmaps.Client
	logger *zap.Logger
}

func NewClient(apiKey string, logger *zap.Logger) (*Client, error) {
	c, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating maps client: %w", err)
	}
	return &Client{maps: c, logger: logger}, nil
}

// Distance returns the driving distance in miles from origin to destination
func (c *Client) Distance(ctx context.Context, origin, destination string) (float64, error) {
	resp, err := c.maps.DistanceMatrix(ctx, &gmaps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
		Units:        gmaps.UnitsImperial,
		Mode:         gmaps.TravelModeDriving,
	})
	if err != nil {
		return 0, fmt.Errorf("distance matrix request: %w", err)
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("distance matrix returned no results for %q to %q", origin, destination)
	}
	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return 0, fmt.Errorf("distance matrix element status %q for %q to %q", element.Status, origin, destination)
	}

	miles := float64(element.Distance.Meters) / metersPerMile
	c.logger.Debug("distance resolved",
		zap.String("origin", origin),
		zap.String("destination", destination),
		zap.Float64("miles", miles))
	return miles, nil
}
