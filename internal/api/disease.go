package api

import (
	"context"
	"net/http"
	"strconv"
)

// LastEto reads the most recent evapotranspiration values.
func (s DiseaseService) LastEto(ctx context.Context, stationID, period string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("disease", stationID, "last", period).String(), nil)
}

// EtoBetween reads evapotranspiration from the from timestamp on.
// A zero to leaves the range open.
func (s DiseaseService) EtoBetween(ctx context.Context, stationID string, from, to int64) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, diseaseBetweenRoute(stationID, from, to), nil)
}

// Last runs a disease model over the most recent period. body selects the model.
func (s DiseaseService) Last(ctx context.Context, stationID, period string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPost, newRoute("disease", stationID, "last", period).String(), body)
}

// Between runs a disease model from the from timestamp on.
func (s DiseaseService) Between(ctx context.Context, stationID string, from, to int64, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPost, diseaseBetweenRoute(stationID, from, to), body)
}

func diseaseBetweenRoute(stationID string, from, to int64) string {
	return newRoute("disease", stationID, "from", strconv.FormatInt(from, 10)).
		optPair("to", unix(to)).
		String()
}
