package fileserver

import (
	"net/http"
	"time"
)

// checkModified evaluates If-Unmodified-Since and If-Modified-Since
// against lastModified (both truncated to whole seconds, matching HTTP
// date precision), returning the short-circuit status code if either
// precondition fires: 412 if the resource changed since
// If-Unmodified-Since, 304 if it hasn't changed since If-Modified-Since.
func checkModified(r *http.Request, lastModified time.Time) (status int, short bool) {
	lastModified = lastModified.Truncate(time.Second)

	if v := r.Header.Get("If-Unmodified-Since"); v != "" {
		if t, err := http.ParseTime(v); err == nil && lastModified.After(t) {
			return http.StatusPreconditionFailed, true
		}
	}
	if v := r.Header.Get("If-Modified-Since"); v != "" {
		if t, err := http.ParseTime(v); err == nil && !lastModified.After(t) {
			return http.StatusNotModified, true
		}
	}
	return 0, false
}
