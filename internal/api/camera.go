package api

import (
	"context"
	"net/http"
	"strconv"
)

// Range returns the first and last dates for which photos exist.
func (s CameraService) Range(ctx context.Context, stationID string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("camera", stationID, "photos", "info").String(), nil)
}

// Last lists the most recent amount photos. camera is optional.
func (s CameraService) Last(ctx context.Context, stationID string, amount int, camera string) (*Response, error) {
	path := newRoute("camera", stationID, "photos", "last", strconv.Itoa(amount)).opt(camera)
	return s.Dispatch(ctx, http.MethodGet, path.String(), nil)
}

// Between lists photos in a period. Zero timestamps and an empty camera are
// left out of the route.
func (s CameraService) Between(ctx context.Context, stationID string, from, to int64, camera string) (*Response, error) {
	path := newRoute("camera", stationID, "photos").
		optPair("from", unix(from)).
		optPair("to", unix(to)).
		opt(camera)
	return s.Dispatch(ctx, http.MethodGet, path.String(), nil)
}
