package api

import (
	"context"
	"net/http"
	"strconv"
)

// Data formats accepted in place of the default.
const (
	FormatNormal    = "normal"
	FormatOptimized = "optimized"
)

// Range returns the first and last dates for which the station has data.
func (s DataService) Range(ctx context.Context, stationID string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("data", stationID).String(), nil)
}

// Last reads the most recent period of data (for example "1d" or "24").
// format is optional.
func (s DataService) Last(ctx context.Context, stationID, group, period, format string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, lastRoute("data", format, stationID, group, period), nil)
}

// Between reads data from the from timestamp on. A zero to leaves the range open.
// format is optional.
func (s DataService) Between(ctx context.Context, stationID, group string, from, to int64, format string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, betweenRoute("data", format, stationID, group, from, to), nil)
}

// LastCustom is Last with a customization body.
func (s DataService) LastCustom(ctx context.Context, stationID, group, period, format string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPost, lastRoute("data", format, stationID, group, period), body)
}

// BetweenCustom is Between with a customization body.
func (s DataService) BetweenCustom(ctx context.Context, stationID, group string, from, to int64, format string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPost, betweenRoute("data", format, stationID, group, from, to), body)
}

// lastRoute builds "{family}[/{variant}]/{station}/{group}/last/{period}".
// Data and chart routes share this shape.
func lastRoute(family, variant, stationID, group, period string) string {
	return newRoute(family).opt(variant).add(stationID, group, "last", period).String()
}

// betweenRoute builds "{family}[/{variant}]/{station}/{group}/from/{from}[/to/{to}]".
func betweenRoute(family, variant, stationID, group string, from, to int64) string {
	return newRoute(family).opt(variant).
		add(stationID, group, "from", strconv.FormatInt(from, 10)).
		optPair("to", unix(to)).
		String()
}
