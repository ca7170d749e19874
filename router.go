package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/r3labs/sse/v2"
	"github.com/rs/cors"

	"github.com/marcus-crane/mediabridge/bridge"
	"github.com/marcus-crane/mediabridge/peer"
	"github.com/marcus-crane/mediabridge/playback"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100

	verificationFailedMessage = "State change verification failed"
)

type playbackStateRequest struct {
	IsPlaying *bool `json:"is_playing"`
}

func renderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

func renderStatus(w http.ResponseWriter) {
	renderJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// statusForError maps bridge failures onto the status codes callers rely on.
// Timeouts are checked first as a control timeout is also a control error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, bridge.ErrTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, bridge.ErrNoActiveSession):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	// Nobody is listening any more so there is nothing to say
	if errors.Is(err, context.Canceled) {
		slog.Debug("Client went away mid-request", slog.String("path", r.URL.Path))
		return
	}
	status := statusForError(err)
	log := slog.With(
		slog.String("request_id", requestIDFrom(r.Context())),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
	)
	if status == http.StatusNotFound {
		log.Info("No active media session")
	} else {
		log.Error("Request failed", slog.Any("error", err))
	}
	renderJSON(w, status, map[string]string{"error": err.Error()})
}

func disconnected(r *http.Request) bool {
	if r.Context().Err() != nil {
		slog.Debug("Client disconnected before session discovery", slog.String("path", r.URL.Path))
		return true
	}
	return false
}

func RegisterRoutes(mux *http.ServeMux, svc *bridge.Service, ps *playback.PlaybackSystem, eventServer *sse.Server, peerClient *peer.Client) http.Handler {

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "Welcome to mediabridge, a small API for whatever this machine is playing.\nYou can find the source code on <a href=\"https://github.com/marcus-crane/mediabridge\">Github</a>\n")
	})

	mux.HandleFunc("GET /current-track", func(w http.ResponseWriter, r *http.Request) {
		if disconnected(r) {
			return
		}
		snapshot, err := svc.CurrentTrack(r.Context())
		if err != nil {
			renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, snapshot)
	})

	mux.HandleFunc("PUT /playback-state", func(w http.ResponseWriter, r *http.Request) {
		var body playbackStateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsPlaying == nil {
			renderJSON(w, http.StatusBadRequest, map[string]string{"error": "request body must be {\"is_playing\": bool}"})
			return
		}
		if disconnected(r) {
			return
		}
		outcome, err := svc.SetPlaying(r.Context(), *body.IsPlaying)
		if err != nil {
			renderError(w, r, err)
			return
		}
		if !outcome.Success {
			renderJSON(w, http.StatusOK, map[string]string{"status": "error", "message": verificationFailedMessage})
			return
		}
		renderStatus(w)
	})

	skipHandler := func(direction bridge.Direction) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if disconnected(r) {
				return
			}
			if err := svc.Skip(r.Context(), direction); err != nil {
				renderError(w, r, err)
				return
			}
			renderStatus(w)
		}
	}
	mux.HandleFunc("POST /skip-next", skipHandler(bridge.DirectionNext))
	mux.HandleFunc("POST /skip-previous", skipHandler(bridge.DirectionPrevious))

	mux.HandleFunc("GET /sessions", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, http.StatusOK, svc.Tracker().Stats())
	})

	mux.HandleFunc("GET /history", func(w http.ResponseWriter, r *http.Request) {
		if ps == nil {
			renderJSON(w, http.StatusNotFound, map[string]string{"error": "history is disabled"})
			return
		}
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				renderJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, maxHistoryLimit)
		}
		results, err := ps.GetHistory(limit)
		if err != nil {
			slog.Error("Failed to load history", slog.Any("error", err))
			renderJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		renderJSON(w, http.StatusOK, results)
	})

	if eventServer != nil {
		mux.HandleFunc("GET /events", eventServer.ServeHTTP)
	}

	mux.HandleFunc("GET /peer/current-track", func(w http.ResponseWriter, r *http.Request) {
		if peerClient == nil {
			renderJSON(w, http.StatusNotFound, map[string]string{"error": "no bridge peer is configured"})
			return
		}
		snapshot, err := peerClient.CurrentTrack(r.Context())
		if err != nil {
			slog.Warn("Failed to reach bridge peer", slog.Any("error", err))
			renderJSON(w, http.StatusBadGateway, map[string]string{"error": peer.ErrUnavailable.Error()})
			return
		}
		renderJSON(w, http.StatusOK, snapshot)
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
			http.MethodHead,
		},
		AllowedHeaders: []string{"*"},
	})

	return withRequestID(c.Handler(withMetrics(mux)))
}
