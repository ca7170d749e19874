package playback

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/r3labs/sse/v2"

	"github.com/marcus-crane/mediabridge/events"
	"github.com/marcus-crane/mediabridge/metrics"
)

type PlaybackSystem struct {
	state  []FullPlaybackEntry
	db     *sqlx.DB
	events *sse.Server
	m      sync.RWMutex
}

var _ System = (*PlaybackSystem)(nil)

// NewPlaybackSystem records history into db. eventServer may be nil, in which
// case changes are not broadcast.
func NewPlaybackSystem(db *sqlx.DB, eventServer *sse.Server) *PlaybackSystem {
	return &PlaybackSystem{
		state:  []FullPlaybackEntry{},
		db:     db,
		events: eventServer,
	}
}

func (ps *PlaybackSystem) UpdatePlaybackState(update Update) error {
	// Ensure we have an ID. It's deterministic so doesn't matter
	// if we run it a bunch of times
	update.MediaItem.ID = GenerateMediaID(&update)

	tx, err := ps.db.Beginx()
	if err != nil {
		return err
	}

	var committed, changed bool
	defer func() {
		if !committed {
			tx.Rollback()
			return
		}
		if err := ps.RefreshCurrentPlayback(); err != nil {
			slog.Error("Failed to refresh current playback", slog.Any("error", err))
		}
		if changed {
			ps.broadcastEvent()
		}
	}()

	elapsed := int(update.Elapsed.Milliseconds())
	now := time.Now()

	var existingEntry PlaybackEntry
	err = tx.Get(&existingEntry, `
	  SELECT id, media_id, elapsed, status, is_active
	  FROM playback_entries
	  WHERE category = ?
	  ORDER BY updated_at DESC, id DESC LIMIT 1`,
		update.MediaItem.Category)

	if err == nil {
		if existingEntry.MediaID == update.MediaItem.ID && existingEntry.IsActive {
			if existingEntry.Status != update.Status || existingEntry.Elapsed != elapsed {
				_, err := tx.Exec(`
				  UPDATE playback_entries
				  SET elapsed = ?, status = ?, updated_at = ?
				  WHERE id = ?`,
					elapsed, update.Status, now, existingEntry.ID)
				if err != nil {
					return err
				}
				changed = existingEntry.Status != update.Status
				metrics.HistoryEntries.WithLabelValues("updated").Inc()
			} else {
				metrics.HistoryEntries.WithLabelValues("unchanged").Inc()
			}

			slog.Debug("Updated existing entry", slog.String("media_id", update.MediaItem.ID))

			if err = tx.Commit(); err != nil {
				return err
			}
			committed = true
			return nil
		}

		// A different track (or app) is playing now so close off the old entry.
		// A closed entry stays closed, even for the same track.
		if existingEntry.IsActive {
			_, err := tx.Exec(`
			  UPDATE playback_entries
			  SET is_active = FALSE, status = ?, updated_at = ?
			  WHERE id = ?`,
				StatusStopped, now, existingEntry.ID)
			if err != nil {
				return fmt.Errorf("failed to deactivate old entry: %w", err)
			}
			metrics.HistoryEntries.WithLabelValues("deactivated").Inc()
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	// Replaying a track we've heard before reuses its media item
	_, err = tx.NamedExec(`
	  INSERT INTO media_items
	  (id, title, subtitle, album, category, duration, source)
	  VALUES (:id, :title, :subtitle, :album, :category, :duration, :source)
	  ON CONFLICT (id) DO NOTHING`,
		update.MediaItem)
	if err != nil {
		return fmt.Errorf("failed to insert new item: %w", err)
	}

	_, err = tx.Exec(`
	  INSERT INTO playback_entries
	  (media_id, category, created_at, elapsed, status, is_active, updated_at, source)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		update.MediaItem.ID, update.MediaItem.Category, now, elapsed, update.Status, true, now, update.MediaItem.Source)
	if err != nil {
		return fmt.Errorf("failed to insert new playback entry: %w", err)
	}
	metrics.HistoryEntries.WithLabelValues("inserted").Inc()

	slog.Debug("Inserted new playback entry", slog.String("media_id", update.MediaItem.ID))

	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	changed = true
	return nil
}

// DeactivateAll closes every active entry. Called when no media session
// exists at all.
func (ps *PlaybackSystem) DeactivateAll() error {
	res, err := ps.db.Exec(`
	  UPDATE playback_entries
	  SET is_active = FALSE, status = ?, updated_at = ?
	  WHERE is_active = TRUE`,
		StatusStopped, time.Now())
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil
	}
	metrics.HistoryEntries.WithLabelValues("deactivated").Add(float64(n))
	if err := ps.RefreshCurrentPlayback(); err != nil {
		return err
	}
	ps.broadcastEvent()
	return nil
}

func (ps *PlaybackSystem) broadcastEvent() {
	if ps.events == nil {
		return
	}
	// Just enough to ping the client to rehydrate itself
	ps.m.RLock()
	jsonState, err := json.Marshal(ps.state)
	ps.m.RUnlock()
	if err != nil {
		slog.Error("Failed to encode playback state", slog.Any("error", err))
		return
	}
	ps.events.Publish(events.PlaybackStream, &sse.Event{Data: jsonState})
}

func (ps *PlaybackSystem) RefreshCurrentPlayback() error {
	entries, err := ps.GetActivePlayback()
	if err != nil {
		return err
	}

	ps.m.Lock()
	defer ps.m.Unlock()

	ps.state = entries

	return nil
}

// CurrentState returns a copy of the in-memory active playback list
func (ps *PlaybackSystem) CurrentState() []FullPlaybackEntry {
	ps.m.RLock()
	defer ps.m.RUnlock()
	return append([]FullPlaybackEntry{}, ps.state...)
}

func (ps *PlaybackSystem) GetActivePlayback() ([]FullPlaybackEntry, error) {
	results := []FullPlaybackEntry{}

	err := ps.db.Select(&results, `
	  SELECT
	    m.id, m.title, m.subtitle, m.album, m.category, m.duration, m.source,
	    p.id as playback_id, p.created_at, p.elapsed, p.status, p.is_active, p.updated_at
	  FROM media_items m
	  JOIN playback_entries p ON m.id = p.media_id
	  WHERE p.is_active = TRUE
	  ORDER BY p.updated_at DESC
	`)

	return results, err
}

func (ps *PlaybackSystem) GetHistory(limit int) ([]FullPlaybackEntry, error) {
	results := []FullPlaybackEntry{}

	err := ps.db.Select(&results, `
	  SELECT
	    m.id, m.title, m.subtitle, m.album, m.category, m.duration, m.source,
	    p.id as playback_id, p.created_at, p.elapsed, p.status, p.is_active, p.updated_at
	  FROM media_items m
	  JOIN playback_entries p ON m.id = p.media_id
	  ORDER BY p.updated_at DESC, p.id DESC
	  LIMIT ?
	`, limit)

	return results, err
}
