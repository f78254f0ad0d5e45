package api

import (
	"context"
	"net/http"
)

// Applications lists the developer's applications.
func (s DevService) Applications(ctx context.Context) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, "dev/applications", nil)
}

// ApplicationUsers lists users registered to an application.
func (s DevService) ApplicationUsers(ctx context.Context, appID string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("dev", "users", appID).String(), nil)
}

// ApplicationStations lists stations in an application.
func (s DevService) ApplicationStations(ctx context.Context, appID string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("dev", "stations", appID).String(), nil)
}

// UserStations lists stations of one application user.
func (s DevService) UserStations(ctx context.Context, userID string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("dev", "user", userID, "stations").String(), nil)
}

// AddStationToUser attaches a station to an application user.
func (s DevService) AddStationToUser(ctx context.Context, username, stationID, stationKey string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPost, newRoute("dev", "user", username, stationID, stationKey).String(), body)
}

// RemoveStationFromUser detaches a station from an application user.
func (s DevService) RemoveStationFromUser(ctx context.Context, username, stationID string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodDelete, newRoute("dev", "user", username, stationID).String(), nil)
}

// RegisterUser registers a new user to an application.
func (s DevService) RegisterUser(ctx context.Context, appID string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPost, newRoute("dev", "user", appID).String(), body)
}

// ActivateUser activates a registered account.
func (s DevService) ActivateUser(ctx context.Context, activationKey string) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, newRoute("dev", "user", "activate", activationKey).String(), nil)
}

// PasswordReset asks the application to reset a user's password.
func (s DevService) PasswordReset(ctx context.Context, appID string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPost, newRoute("dev", "user", appID, "password-reset").String(), body)
}

// PasswordUpdate sets a new password using the key from PasswordReset.
func (s DevService) PasswordUpdate(ctx context.Context, appID, passwordKey string, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPost, newRoute("dev", "user", appID, "password-update", passwordKey).String(), body)
}
