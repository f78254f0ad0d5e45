package api

import (
	"context"
	"net/http"
)

// Info reads the authenticated user's account.
func (s UserService) Info(ctx context.Context) (*Result[User], error) {
	return userInfo(ctx, s)
}

func userInfo(ctx context.Context, r Requester) (*Result[User], error) {
	resp, err := r.Dispatch(ctx, http.MethodGet, "user", nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[User](resp)
}

// Update changes account details. body is sent as-is.
func (s UserService) Update(ctx context.Context, body any) (*Response, error) {
	return s.Dispatch(ctx, http.MethodPut, "user", body)
}

// Delete removes the authenticated user's own account.
func (s UserService) Delete(ctx context.Context) (*Response, error) {
	return s.Dispatch(ctx, http.MethodDelete, "user", nil)
}

// Stations lists the devices on the account.
func (s UserService) Stations(ctx context.Context) (*Result[[]Station], error) {
	return userStations(ctx, s)
}

func userStations(ctx context.Context, r Requester) (*Result[[]Station], error) {
	resp, err := r.Dispatch(ctx, http.MethodGet, "user/stations", nil)
	if err != nil {
		return nil, err
	}
	return decodeResult[[]Station](resp)
}

// Licenses lists the licenses the user holds for each device.
func (s UserService) Licenses(ctx context.Context) (*Response, error) {
	return s.Dispatch(ctx, http.MethodGet, "user/licenses", nil)
}
