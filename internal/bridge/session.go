package bridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mediabridge/internal/page"
	"mediabridge/pkg/models"
)

// bind is the session binder. The previous session's observers are torn down
// before anything of the new session is installed, so no event can be
// delivered against both.
func (b *Bridge) bind(title, artist string, media page.MediaElement) {
	b.registry.DisconnectAll()
	b.generation++

	loc := b.doc.Location()
	id := loc.Query().Get(b.cfg.Source.ItemParam)
	b.media = media

	b.session = &models.Session{
		ID:    id,
		Token: uuid.NewString(),
		Metadata: models.Metadata{
			TrackID: id,
			ArtURL:  fmt.Sprintf(b.cfg.Source.ArtURLTemplate, id),
			URL:     loc.String(),
			Title:   title,
			Artists: []string{artist},
			Length:  models.Micros(media.Duration()),
		},
		PlaybackStatus: models.StatusPlaying,
		Volume:         1.0,
		Rate:           media.PlaybackRate(),
	}

	b.subscribeMedia(media)
	b.bindPlaylist(loc.Query().Get(b.cfg.Source.PlaylistParam))

	b.session.Shuffle = b.playlist.Shuffle
	b.session.CanGoNext = b.affordanceEnabled(b.cfg.Selectors.NextButton)
	b.session.CanGoPrevious = b.affordanceEnabled(b.cfg.Selectors.PrevButton)

	b.logger.WithFields(logrus.Fields{
		"item_id":         id,
		"token":           b.session.Token,
		"title":           title,
		"playlist_id":     b.playlist.ID,
		"playlist_length": b.playlist.Length,
	}).Info("Session bound")

	b.emitChanged(b.snapshot())
}

// bindPlaylist resolves the playlist context from the page affordances.
// Loop/shuffle carry over from the previous context; the navigation watcher
// already cleared them when the playlist identity changed.
func (b *Bridge) bindPlaylist(playlistID string) {
	sel := b.cfg.Selectors

	b.playlist = models.Playlist{
		Index:   -1,
		Loop:    b.playlist.Loop,
		Shuffle: b.playlist.Shuffle,
	}

	if header := b.doc.Query(sel.PlaylistHeader); header != nil {
		b.playlist.ID = playlistID
		if idxEl := b.doc.Query(sel.PlaylistIndex); idxEl != nil {
			if index, length, ok := parseIndexLabel(idxEl.Text()); ok && length > 0 {
				b.playlist.Index = index
				b.playlist.Length = length
			}
		}
	}

	if b.playlist.Length == 0 {
		return
	}

	// The page owns these toggles; the bridge mirrors their state by
	// observing clicks, whether the user or an actuator clicked.
	if btn := b.doc.Query(sel.PlaylistLoop); btn != nil {
		b.registry.Subscribe(btn, "click", func() {
			b.playlist.Loop = !b.playlist.Loop
			b.emitChanged(map[string]interface{}{"LoopStatus": b.loopStatus()})
		})
	}
	if btn := b.doc.Query(sel.PlaylistShuffle); btn != nil {
		b.registry.Subscribe(btn, "click", func() {
			b.playlist.Shuffle = !b.playlist.Shuffle
			if b.session != nil {
				b.session.Shuffle = b.playlist.Shuffle
			}
			b.emitChanged(map[string]interface{}{"Shuffle": b.playlist.Shuffle})
		})
	}
}

// snapshot builds the full-state property map emitted once per bind.
func (b *Bridge) snapshot() map[string]interface{} {
	return map[string]interface{}{
		"Metadata":       b.session.Metadata,
		"PlaybackStatus": b.session.PlaybackStatus,
		"LoopStatus":     b.loopStatus(),
		"Shuffle":        b.session.Shuffle,
		"Volume":         b.session.Volume,
		"Rate":           b.session.Rate,
		"CanGoNext":      b.session.CanGoNext,
		"CanGoPrevious":  b.session.CanGoPrevious,
	}
}

// parseIndexLabel parses a "current / total" position label into a 0-based
// index and a total count.
func parseIndexLabel(label string) (index, length int, ok bool) {
	parts := strings.Split(label, "/")
	if len(parts) != 2 {
		return 0, 0, false
	}
	current, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	total, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return current - 1, total, true
}
