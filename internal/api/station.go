package api

import (
	"context"
	"net/http"
	"strconv"
)

// Sort orders accepted by event and history routes.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Info reads station information.
func (s StationService) Info(ctx context.Context, stationID string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("station", stationID).String(), nil)
}

// Update changes station settings.
func (s StationService) Update(ctx context.Context, stationID string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPut, newRoute("station", stationID).String(), body)
}

// Sensors lists every sensor the station has or had.
func (s StationService) Sensors(ctx context.Context, stationID string) (*Result[[]Sensor], error) {
	return listSensors(ctx, s, newRoute("station", stationID, "sensors").String())
}

// UpdateSensors changes sensor names, units and similar settings.
func (s StationService) UpdateSensors(ctx context.Context, stationID string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPut, newRoute("station", stationID, "sensors").String(), body)
}

// Nodes lists custom names of wireless nodes attached to the station.
func (s StationService) Nodes(ctx context.Context, stationID string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("station", stationID, "nodes").String(), nil)
}

// UpdateNodes renames nodes.
func (s StationService) UpdateNodes(ctx context.Context, stationID string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPut, newRoute("station", stationID, "nodes").String(), body)
}

// Serials reads sensor serial settings. The API answers 204 when none exist.
func (s StationService) Serials(ctx context.Context, stationID string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("station", stationID, "serials").String(), nil)
}

// UpdateSerials changes sensor serial information.
func (s StationService) UpdateSerials(ctx context.Context, stationID string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPut, newRoute("station", stationID, "serials").String(), body)
}

// Add attaches a station to the account using the key shipped with the device.
func (s StationService) Add(ctx context.Context, stationID, stationKey string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPost, newRoute("station", stationID, stationKey).String(), body)
}

// Remove detaches a station from the account.
func (s StationService) Remove(ctx context.Context, stationID, stationKey string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodDelete, newRoute("station", stationID, stationKey).String(), nil)
}

// Proximity finds stations within radius of the given station.
func (s StationService) Proximity(ctx context.Context, stationID, radius string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("station", stationID, "proximity", radius).String(), nil)
}

// LastEvents reads the last amount events. sort is optional.
func (s StationService) LastEvents(ctx context.Context, stationID string, amount int, sort string) (*Response, error) {
	return stationLastEvents(ctx, s, stationID, amount, sort)
}

func stationLastEvents(ctx context.Context, r Requester, stationID string, amount int, sort string) (*Response, error) {
	path := newRoute("station", stationID, "events", "last", strconv.Itoa(amount)).opt(sort)
	return r.Dispatch(ctx, http.MethodGet, path.String(), nil)
}

// EventsBetween reads events in [from, to]. sort is optional.
func (s StationService) EventsBetween(ctx context.Context, stationID string, from, to int64, sort string) (*Response, error) {
	return stationEventsBetween(ctx, s, stationID, from, to, sort)
}

func stationEventsBetween(ctx context.Context, r Requester, stationID string, from, to int64, sort string) (*Response, error) {
	path := newRoute("station", stationID, "events",
		"from", strconv.FormatInt(from, 10),
		"to", strconv.FormatInt(to, 10)).opt(sort)
	return r.Dispatch(ctx, http.MethodGet, path.String(), nil)
}

// HistoryLast reads the last amount transmission history entries.
// filter and sort are optional.
func (s StationService) HistoryLast(ctx context.Context, stationID string, amount int, filter, sort string) (*Response, error) {
	return stationHistoryLast(ctx, s, stationID, amount, filter, sort)
}

func stationHistoryLast(ctx context.Context, r Requester, stationID string, amount int, filter, sort string) (*Response, error) {
	path := newRoute("station", stationID, "history").
		opt(filter).
		add("last", strconv.Itoa(amount)).
		opt(sort)
	return r.Dispatch(ctx, http.MethodGet, path.String(), nil)
}

// HistoryBetween reads transmission history in [from, to].
// filter and sort are optional.
func (s StationService) HistoryBetween(ctx context.Context, stationID string, from, to int64, filter, sort string) (*Response, error) {
	return stationHistoryBetween(ctx, s, stationID, from, to, filter, sort)
}

func stationHistoryBetween(ctx context.Context, r Requester, stationID string, from, to int64, filter, sort string) (*Response, error) {
	path := newRoute("station", stationID, "history").
		opt(filter).
		add("from", strconv.FormatInt(from, 10), "to", strconv.FormatInt(to, 10)).
		opt(sort)
	return r.Dispatch(ctx, http.MethodGet, path.String(), nil)
}

// Licenses lists the station's licenses grouped by service.
func (s StationService) Licenses(ctx context.Context, stationID string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("station", stationID, "licenses").String(), nil)
}
