package handlers

import (
	"net/http"
	"strconv"
	"time"

	"ecom-dashboard/internal/services"
)

const dateLayout = "2006-01-02"

// An inverted range selects no rows; used when a supplied bound does not
// parse, per the rule that bad bounds mean "no data", not an error.
var (
	noSelectionStart = time.Date(1, time.January, 2, 0, 0, 0, 0, time.UTC)
	noSelectionEnd   = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// queryRange resolves the start/end query params. With neither present the
// full dataset span is used, mirroring the date picker default; a missing
// side falls back to the corresponding span edge.
func queryRange(analytics *services.Analytics, r *http.Request) (time.Time, time.Time) {
	q := r.URL.Query()
	startRaw, endRaw := q.Get("start"), q.Get("end")

	start, end := analytics.Span()
	if startRaw != "" {
		t, err := time.Parse(dateLayout, startRaw)
		if err != nil {
			return noSelectionStart, noSelectionEnd
		}
		start = t
	}
	if endRaw != "" {
		t, err := time.Parse(dateLayout, endRaw)
		if err != nil {
			return noSelectionStart, noSelectionEnd
		}
		end = t
	}
	return start, end
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
