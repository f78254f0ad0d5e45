package api

import (
	"context"
	"net/http"
)

// Data retrieves a forecast for the station, for example option "general7".
func (s ForecastService) Data(ctx context.Context, stationID, option string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("forecast", stationID, option).String(), nil)
}

// Image retrieves a forecast image. The route is the same as Data; the
// option selects an image product such as "meteogram".
func (s ForecastService) Image(ctx context.Context, stationID, option string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("forecast", stationID, option).String(), nil)
}
