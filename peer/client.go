package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/marcus-crane/mediabridge/bridge"
	"github.com/marcus-crane/mediabridge/metrics"
)

// DefaultTimeout is how long we wait on another bridge before giving up on it.
const DefaultTimeout = time.Second

var ErrUnavailable = errors.New("bridge peer unavailable")

// Client reads the current track from another mediabridge instance, usually
// the one running on the machine that actually plays the music.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[bridge.TrackSnapshot]
}

// NewClient returns nil when baseURL is empty so callers can treat a missing
// peer as "not configured".
func NewClient(httpClient *http.Client, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	metrics.PeerBreakerState.Set(stateToFloat(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[bridge.TrackSnapshot](gobreaker.Settings{
		Name:        "bridge-peer",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.With(
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			).Info("Peer circuit breaker changed state")
			metrics.PeerBreakerState.Set(stateToFloat(to))
		},
	})

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		cb:      cb,
	}
}

// CurrentTrack fetches the peer's snapshot. Every failure, including an open
// breaker, matches ErrUnavailable.
func (c *Client) CurrentTrack(ctx context.Context) (bridge.TrackSnapshot, error) {
	snapshot, err := c.cb.Execute(func() (bridge.TrackSnapshot, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.PeerRequests.WithLabelValues("rejected").Inc()
		} else {
			metrics.PeerRequests.WithLabelValues("failure").Inc()
		}
		return bridge.TrackSnapshot{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	metrics.PeerRequests.WithLabelValues("success").Inc()
	return snapshot, nil
}

func (c *Client) fetch(ctx context.Context) (bridge.TrackSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/current-track", nil)
	if err != nil {
		return bridge.TrackSnapshot{}, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return bridge.TrackSnapshot{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return bridge.TrackSnapshot{}, fmt.Errorf("peer responded with %s", res.Status)
	}

	var snapshot bridge.TrackSnapshot
	if err := json.NewDecoder(res.Body).Decode(&snapshot); err != nil {
		return bridge.TrackSnapshot{}, fmt.Errorf("failed to decode peer snapshot: %w", err)
	}
	return snapshot, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
