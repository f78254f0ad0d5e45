package api

import (
	"context"
	"net/http"
)

// Chart types accepted in place of the default.
const (
	ChartImages     = "images"
	ChartHighcharts = "highcharts"
)

// Last charts the most recent period of data. chartType is optional.
func (s ChartService) Last(ctx context.Context, stationID, group, period, chartType string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, lastRoute("chart", chartType, stationID, group, period), nil)
}

// Between charts data from the from timestamp on. A zero to leaves the range open.
func (s ChartService) Between(ctx context.Context, stationID, group string, from, to int64, chartType string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, betweenRoute("chart", chartType, stationID, group, from, to), nil)
}

// LastCustom is Last with a customization body.
func (s ChartService) LastCustom(ctx context.Context, stationID, group, period, chartType string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPost, lastRoute("chart", chartType, stationID, group, period), body)
}

// BetweenCustom is Between with a customization body.
func (s ChartService) BetweenCustom(ctx context.Context, stationID, group string, from, to int64, chartType string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPost, betweenRoute("chart", chartType, stationID, group, from, to), body)
}
