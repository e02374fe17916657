// Package htmx holds the request and response headers the ladder UI uses to
// swap fragments in place.
package htmx

import (
	"net/http"
	"strings"
)

const (
	// EventMatchUpdated refreshes match cards and standings after a result.
	EventMatchUpdated = "match-updated"
	// EventRanksCommitted reloads the standings table after a rank commit.
	EventRanksCommitted = "ranks-committed"
)

// IsRequest reports whether r was issued by htmx and expects a fragment.
func IsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// Trigger asks the client to fire event once the response is swapped in.
// Call before writing the status code.
func Trigger(w http.ResponseWriter, event string) {
	w.Header().Add("HX-Trigger", event)
}
