// Package routing adapts the Google Maps Directions API to the RoutePlanner
// port.
package routing

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
)

// GoogleRoutePlanner computes drivable routes via the Google Maps Directions
// API. Implements ports.RoutePlanner.
type GoogleRoutePlanner struct {
	client *maps.Client
}

// NewGoogleRoutePlanner creates a planner with the given API key.
func NewGoogleRoutePlanner(apiKey string) (*GoogleRoutePlanner, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleRoutePlanner{client: client}, nil
}

// ComputeRoute requests driving directions from origin to destination through
// the given waypoints and flattens the decoded overview polyline into a
// RoutePlan. The plan always starts at origin and ends at destination, so the
// emission loop's first and last points match the trip endpoints exactly even
// when the polyline is snapped to roads.
//
// Any API failure or empty result surfaces as errs.RouteUnavailableError.
func (p *GoogleRoutePlanner) ComputeRoute(
	ctx context.Context,
	origin kernel.Location,
	destination kernel.Location,
	waypoints ...kernel.Location,
) (kernel.RoutePlan, error) {
	request := &maps.DirectionsRequest{
		Origin:      formatLatLng(origin),
		Destination: formatLatLng(destination),
		Mode:        maps.TravelModeDriving,
	}
	for _, wp := range waypoints {
		request.Waypoints = append(request.Waypoints, formatLatLng(wp))
	}

	routes, _, err := p.client.Directions(ctx, request)
	if err != nil {
		return kernel.RoutePlan{}, errs.NewRouteUnavailableError(origin.String(), destination.String(), err)
	}

	if len(routes) == 0 {
		return kernel.RoutePlan{}, errs.NewRouteUnavailableError(origin.String(), destination.String(), nil)
	}

	decoded, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return kernel.RoutePlan{}, errs.NewRouteUnavailableError(origin.String(), destination.String(), err)
	}

	points := make([]kernel.Location, 0, len(decoded)+2)
	points = append(points, origin)
	for _, ll := range decoded {
		point, locErr := kernel.NewLocation(ll.Lat, ll.Lng)
		if locErr != nil {
			return kernel.RoutePlan{}, errs.NewRouteUnavailableError(origin.String(), destination.String(), locErr)
		}
		points = append(points, point)
	}
	points = append(points, destination)

	return kernel.NewRoutePlan(points)
}

// ComputeDistance returns the driving distance in meters between two points.
// Falls back on the Directions leg distance rather than straight-line
// measurement so it agrees with what ComputeRoute would produce.
func (p *GoogleRoutePlanner) ComputeDistance(ctx context.Context, from kernel.Location, to kernel.Location) (float64, error) {
	request := &maps.DirectionsRequest{
		Origin:      formatLatLng(from),
		Destination: formatLatLng(to),
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := p.client.Directions(ctx, request)
	if err != nil {
		return 0, errs.NewRouteUnavailableError(from.String(), to.String(), err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, errs.NewRouteUnavailableError(from.String(), to.String(), nil)
	}

	total := 0.0
	for _, leg := range routes[0].Legs {
		total += float64(leg.Distance.Meters)
	}
	return total, nil
}

func formatLatLng(l kernel.Location) string {
	return fmt.Sprintf("%f,%f", l.Latitude(), l.Longitude())
}
