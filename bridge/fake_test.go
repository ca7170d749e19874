package bridge

import (
	"context"
	"sync"
)

// fakeSession is an in-memory Session. Commands flip status unless
// ignoreCommands is set, which lets tests simulate a player that accepts a
// command but never changes state.
type fakeSession struct {
	mu sync.Mutex

	id          string
	status      Status
	props       MediaProperties
	propsErr    error
	timeline    Timeline
	timelineErr error
	commandErr  error

	ignoreCommands bool
	hangProps      chan struct{}
	calls          []string
}

func (f *fakeSession) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSession) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) PlaybackStatus(ctx context.Context) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, nil
}

func (f *fakeSession) MediaProperties(ctx context.Context) (MediaProperties, error) {
	if f.hangProps != nil {
		// Deliberately ignores ctx, like an OS call that never returns.
		<-f.hangProps
	}
	return f.props, f.propsErr
}

func (f *fakeSession) Timeline(ctx context.Context) (Timeline, error) {
	return f.timeline, f.timelineErr
}

func (f *fakeSession) command(name string, next Status) error {
	f.record(name)
	if f.commandErr != nil {
		return f.commandErr
	}
	if !f.ignoreCommands && next != "" {
		f.mu.Lock()
		f.status = next
		f.mu.Unlock()
	}
	return nil
}

func (f *fakeSession) Play(ctx context.Context) error  { return f.command("play", StatusPlaying) }
func (f *fakeSession) Pause(ctx context.Context) error { return f.command("pause", StatusPaused) }
func (f *fakeSession) SkipNext(ctx context.Context) error {
	return f.command("skip_next", "")
}
func (f *fakeSession) SkipPrevious(ctx context.Context) error {
	return f.command("skip_previous", "")
}

type fakeManager struct {
	session Session
	err     error
	hang    chan struct{}
}

func (m *fakeManager) CurrentSession(ctx context.Context) (Session, error) {
	if m.hang != nil {
		<-m.hang
	}
	return m.session, m.err
}
