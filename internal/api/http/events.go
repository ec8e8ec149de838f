package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mind-engage/skillcheck/internal/api/envelope"
	syncx "github.com/mind-engage/skillcheck/internal/sync"
)

type EventReader interface {
	After(ctx context.Context, after int64, limit int) ([]syncx.Event, error)
}

func parseIntDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return def
}

// GET /events?after=0&limit=100
func EventsHandler(er EventReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		after := int64(parseIntDefault(q.Get("after"), 0))
		list, err := er.After(r.Context(), after, parseIntDefault(q.Get("limit"), 100))
		if err != nil {
			writeError(w, err)
			return
		}
		next := after
		if n := len(list); n > 0 {
			next = list[n-1].Seq
		}
		envelope.OK(w, http.StatusOK, map[string]any{"events": list, "next": next})
	}
}
