package peer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/mediabridge/bridge"
)

func strPtr(s string) *string { return &s }

func TestNewClient_EmptyURL(t *testing.T) {
	assert.Nil(t, NewClient(http.DefaultClient, "", time.Second))
}

func TestClient_CurrentTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/current-track", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Song","artist":"Band","album":null,"app_name":"spotify","is_playing":true,"duration_ms":200000,"progress_ms":5000,"image_url":null}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL+"/", time.Second)
	snapshot, err := client.CurrentTrack(context.Background())
	require.NoError(t, err)

	want := bridge.TrackSnapshot{
		Name:       strPtr("Song"),
		Artist:     strPtr("Band"),
		AppName:    strPtr("spotify"),
		IsPlaying:  true,
		DurationMS: 200000,
		ProgressMS: 5000,
	}
	if diff := cmp.Diff(want, snapshot); diff != "" {
		t.Errorf("CurrentTrack() mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_CurrentTrack_PeerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"operation timed out"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, time.Second)
	_, err := client.CurrentTrack(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_CurrentTrack_SlowPeer(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.Client(), server.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := client.CurrentTrack(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.Client(), server.URL, time.Second)

	for i := 0; i < 5; i++ {
		_, err := client.CurrentTrack(context.Background())
		require.Error(t, err)
	}
	assert.Equal(t, int32(5), hits.Load())

	_, err := client.CurrentTrack(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(5), hits.Load())
}
