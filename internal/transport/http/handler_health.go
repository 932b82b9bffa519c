package httptransport

import (
	"context"
	"net/http"
	"sort"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Health reports each dependency as up or down; any down dependency makes the
// whole check fail.
func Health(deps map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return func(w http.ResponseWriter, r *http.Request) {
		out := map[string]any{"ok": true}
		status := http.StatusOK
		for _, name := range names {
			if err := deps[name].Ping(r.Context()); err != nil {
				out[name] = "down"
				out["ok"] = false
				status = http.StatusServiceUnavailable
				continue
			}
			out[name] = "up"
		}
		writeJSON(w, status, out)
	}
}
