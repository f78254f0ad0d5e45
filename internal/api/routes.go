package api

import (
	"strconv"
	"strings"
)

// route assembles slash-delimited route segments. Optional segments are only
// appended when set, so the builder never produces empty path components for them.
type route struct {
	segments []string
}

func newRoute(segments ...string) *route {
	return &route{segments: segments}
}

func (r *route) add(segments ...string) *route {
	r.segments = append(r.segments, segments...)
	return r
}

// opt appends segment when it is non-empty.
func (r *route) opt(segment string) *route {
	if segment != "" {
		r.segments = append(r.segments, segment)
	}
	return r
}

// optPair appends "key/value" when value is non-empty.
func (r *route) optPair(key, value string) *route {
	if value != "" {
		r.segments = append(r.segments, key, value)
	}
	return r
}

func (r *route) String() string {
	return strings.Join(r.segments, "/")
}

// unix formats a Unix timestamp segment. Zero means "not set".
func unix(ts int64) string {
	if ts == 0 {
		return ""
	}
	return strconv.FormatInt(ts, 10)
}
