package api

import (
	"context"
	"net/http"
)

// Status checks system status.
func (s SystemService) Status(ctx context.Context) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, "system/status", nil)
}

// Sensors lists every sensor the system knows about.
func (s SystemService) Sensors(ctx context.Context) (*Result[[]Sensor], error) {
	return listSensors(ctx, s, "system/sensors")
}

func listSensors(ctx context.Context, r Requester, route string) (*Result[[]Sensor], error) {
	resp, err := r.Dispatch(ctx, http.MethodGet, route, nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[[]Sensor](resp)
}

// SensorGroups lists sensor groups.
func (s SystemService) SensorGroups(ctx context.Context) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, "system/groups", nil)
}

// GroupSensors lists groups together with the sensors in them.
func (s SystemService) GroupSensors(ctx context.Context) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, "system/group/sensors", nil)
}

// Types lists supported device types.
func (s SystemService) Types(ctx context.Context) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, "system/types", nil)
}

// Countries lists supported countries.
func (s SystemService) Countries(ctx context.Context) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, "system/countries", nil)
}

// Timezones lists supported time zones.
func (s SystemService) Timezones(ctx context.Context) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, "system/timezones", nil)
}

// Diseases lists the disease models the system supports.
func (s SystemService) Diseases(ctx context.Context) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, "system/diseases", nil)
}
