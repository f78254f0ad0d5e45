package api

import "context"

// Requester is the request surface the resource helpers depend on.
//
// Route builders in this package only assemble a method and a route and hand
// them to Dispatch, so they can be tested against a recording fake without
// any HTTP traffic:
//
//	type recorder struct{ method, route string }
//	func (r *recorder) Dispatch(_ context.Context, m, route string, _ any) (*Response, error) {
//		r.method, r.route = m, route
//		return &Response{StatusCode: 200}, nil
//	}
type Requester interface {
	Dispatch(ctx context.Context, method, route string, body any) (*Response, error)
}
