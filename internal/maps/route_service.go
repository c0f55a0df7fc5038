package maps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

var ErrNoRoute = errors.New("no route found")

// RouteService estimates drive times through the Google Directions API.
type RouteService struct {
	client *maps.Client
}

func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// DriveTime returns the driving duration of the first route between origin and destination.
// Traffic is modelled for departure now.
func (s *RouteService) DriveTime(ctx context.Context, origin, destination string) (time.Duration, error) {
	r := &maps.DirectionsRequest{
		Origin:        origin,
		Destination:   destination,
		Mode:          maps.TravelModeDriving,
		DepartureTime: "now",
		Language:      "en-GB",
		Region:        "GB",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, ErrNoRoute
	}

	var total time.Duration
	for _, leg := range routes[0].Legs {
		if leg.DurationInTraffic > 0 {
			total += leg.DurationInTraffic
			continue
		}
		total += leg.Duration
	}
	return total, nil
}
