package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPlaying_NoSession(t *testing.T) {
	t.Parallel()
	_, err := SetPlaying(context.Background(), nil, true, time.Second)
	assert.True(t, errors.Is(err, ErrNoActiveSession))
}

func TestSetPlaying_AlreadyPlayingStillSendsPlay(t *testing.T) {
	t.Parallel()
	s := playingSession()

	got, err := SetPlaying(context.Background(), s, true, time.Second)
	require.NoError(t, err)
	want := ControlOutcome{Requested: true, Observed: true, Success: true}
	if !cmp.Equal(want, got) {
		t.Error(cmp.Diff(want, got))
	}
	assert.Equal(t, []string{"play"}, s.Calls())

	// Repeating the request is harmless
	got, err = SetPlaying(context.Background(), s, true, time.Second)
	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.Equal(t, []string{"play", "play"}, s.Calls())
}

func TestSetPlaying_PauseVerified(t *testing.T) {
	t.Parallel()
	s := playingSession()

	got, err := SetPlaying(context.Background(), s, false, time.Second)
	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.False(t, got.Observed)
	assert.Equal(t, []string{"pause"}, s.Calls())
}

func TestSetPlaying_VerificationMismatchIsNotAnError(t *testing.T) {
	t.Parallel()
	s := playingSession()
	s.status = StatusPaused
	s.ignoreCommands = true

	got, err := SetPlaying(context.Background(), s, true, time.Second)
	require.NoError(t, err)
	want := ControlOutcome{Requested: true, Observed: false, Success: false}
	if !cmp.Equal(want, got) {
		t.Error(cmp.Diff(want, got))
	}
	assert.Equal(t, []string{"play"}, s.Calls())
}

func TestSetPlaying_TransportFaultKeepsMessage(t *testing.T) {
	t.Parallel()
	s := playingSession()
	s.status = StatusPaused
	s.commandErr = errors.New("org.mpris.MediaPlayer2.Player.Play not supported")

	_, err := SetPlaying(context.Background(), s, true, time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrControl))
	assert.Contains(t, err.Error(), "Play not supported")
}

func TestSkip(t *testing.T) {
	t.Parallel()
	s := playingSession()

	require.NoError(t, Skip(context.Background(), s, DirectionNext, time.Second))
	require.NoError(t, Skip(context.Background(), s, DirectionPrevious, time.Second))
	assert.Equal(t, []string{"skip_next", "skip_previous"}, s.Calls())
}

func TestSkip_NoSession(t *testing.T) {
	t.Parallel()
	err := Skip(context.Background(), nil, DirectionNext, time.Second)
	assert.True(t, errors.Is(err, ErrNoActiveSession))
}

func TestSkip_TransportFault(t *testing.T) {
	t.Parallel()
	s := playingSession()
	s.commandErr = errors.New("player went away")

	err := Skip(context.Background(), s, DirectionNext, time.Second)
	assert.True(t, errors.Is(err, ErrControl))
	assert.Contains(t, err.Error(), "player went away")
}
