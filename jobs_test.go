package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/mediabridge/bridge"
	"github.com/marcus-crane/mediabridge/config"
	"github.com/marcus-crane/mediabridge/playback"
)

type stubSource struct {
	snapshot bridge.TrackSnapshot
	err      error
}

func (s stubSource) CurrentTrack(ctx context.Context) (bridge.TrackSnapshot, error) {
	return s.snapshot, s.err
}

type recordingSystem struct {
	updates     []playback.Update
	deactivated int
	refreshed   int
	updateErr   error
}

func (r *recordingSystem) UpdatePlaybackState(update playback.Update) error {
	r.updates = append(r.updates, update)
	return r.updateErr
}

func (r *recordingSystem) RefreshCurrentPlayback() error {
	r.refreshed++
	return nil
}

func (r *recordingSystem) GetActivePlayback() ([]playback.FullPlaybackEntry, error) {
	return nil, nil
}

func (r *recordingSystem) DeactivateAll() error {
	r.deactivated++
	return nil
}

func (r *recordingSystem) GetHistory(limit int) ([]playback.FullPlaybackEntry, error) {
	return nil, nil
}

func strPtr(s string) *string { return &s }

func TestRecordCurrentTrack_Playing(t *testing.T) {
	ps := &recordingSystem{}
	source := stubSource{snapshot: bridge.TrackSnapshot{
		Name:       strPtr("Song"),
		Artist:     strPtr("Band"),
		Album:      strPtr("Record"),
		AppName:    strPtr("spotify"),
		IsPlaying:  true,
		DurationMS: 200000,
		ProgressMS: 5000,
	}}

	RecordCurrentTrack(context.Background(), source, ps)

	require.Len(t, ps.updates, 1)
	assert.Equal(t, "Song", ps.updates[0].MediaItem.Title)
	assert.Equal(t, "spotify", ps.updates[0].MediaItem.Source)
	assert.Equal(t, playback.StatusPlaying, ps.updates[0].Status)
	assert.Equal(t, 5*time.Second, ps.updates[0].Elapsed)
	assert.Zero(t, ps.deactivated)
}

func TestRecordCurrentTrack_IdleDeactivates(t *testing.T) {
	ps := &recordingSystem{}

	RecordCurrentTrack(context.Background(), stubSource{}, ps)

	assert.Empty(t, ps.updates)
	assert.Equal(t, 1, ps.deactivated)
}

func TestRecordCurrentTrack_ErrorsLeaveHistoryAlone(t *testing.T) {
	for _, err := range []error{
		&bridge.TimeoutError{Op: "session_manager", Budget: time.Second},
		bridge.ErrDiscovery,
	} {
		ps := &recordingSystem{}
		RecordCurrentTrack(context.Background(), stubSource{err: err}, ps)
		assert.Empty(t, ps.updates)
		assert.Zero(t, ps.deactivated)
	}
}

func TestSetupInBackground(t *testing.T) {
	ps := &recordingSystem{}
	cfg := config.Config{History: config.HistoryConfig{Interval: "1h"}}

	s, err := SetupInBackground(context.Background(), cfg, stubSource{}, ps)
	require.NoError(t, err)
	assert.Len(t, s.Jobs(), 1)
	assert.Equal(t, 1, ps.refreshed)
}
