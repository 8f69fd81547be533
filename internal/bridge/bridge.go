// Package bridge implements the playback state bridge: it watches page
// navigation for playable items, binds a session to the current item, turns
// raw page events into minimal property deltas on the outbound channel, and
// dispatches inbound remote-control commands back onto the page.
package bridge

import (
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"mediabridge/internal/config"
	"mediabridge/internal/observer"
	"mediabridge/internal/page"
	"mediabridge/internal/port"
	"mediabridge/pkg/models"
)

// Bridge owns the single active session and its observer registry. All
// methods must run on the bridge's Runner; nothing here is safe for
// concurrent use from other goroutines.
type Bridge struct {
	cfg    *config.Config
	doc    page.Document
	out    port.Emitter
	runner Runner
	logger *logrus.Entry

	session  *models.Session
	media    page.MediaElement
	playlist models.Playlist
	registry *observer.Registry

	// generation bumps on every bind and unbind; delayed callbacks capture
	// it so a completion scheduled against a since-replaced session no-ops.
	generation uint64

	prevURL    *url.URL
	pollSeq    uint64
	cancelPoll func()
	cancelNav  func()

	commands map[string]commandFunc
}

func New(cfg *config.Config, doc page.Document, out port.Emitter, runner Runner, logger *logrus.Logger) *Bridge {
	b := &Bridge{
		cfg:      cfg,
		doc:      doc,
		out:      out,
		runner:   runner,
		logger:   logger.WithField("source", cfg.Source.Name),
		playlist: models.NewPlaylist(),
		registry: observer.NewRegistry(),
	}
	b.commands = b.commandTable()
	return b
}

// Start subscribes to page-transition signals and classifies the current
// location once, so a host that opens directly on a playable item binds
// without waiting for a navigation.
func (b *Bridge) Start() {
	b.cancelNav = b.doc.OnNavigate(b.handleNavigation)
	b.handleNavigation()
}

// Dispose tears the bridge down: pending polls are cancelled, the navigation
// subscription is removed, and a bound session is ended.
func (b *Bridge) Dispose() {
	b.stopPoll()
	if b.cancelNav != nil {
		b.cancelNav()
		b.cancelNav = nil
	}
	if b.session != nil {
		b.unbind()
	}
}

// handleNavigation is the navigation watcher. It resets the playlist context
// when the playlist identity does not survive the transition, starts the
// readiness poller for playable locations, and ends the session otherwise.
func (b *Bridge) handleNavigation() {
	next := b.doc.Location()
	nextList := next.Query().Get(b.cfg.Source.PlaylistParam)

	if !b.isPlayable(next) || (b.isPlayable(b.prevURL) && b.playlist.ID != nextList) {
		b.playlist = models.NewPlaylist()
	}

	if b.isPlayable(next) {
		b.startPoll()
	} else {
		b.stopPoll()
		if b.session != nil {
			b.unbind()
		}
	}

	b.prevURL = next
}

// isPlayable reports whether u is a playable-item view.
func (b *Bridge) isPlayable(u *url.URL) bool {
	return u != nil && strings.HasPrefix(u.Path, b.cfg.Source.WatchPrefix)
}

// unbind ends the current session: observers are torn down synchronously and
// the consumer is notified. Identity state is gone after this returns.
func (b *Bridge) unbind() {
	b.generation++
	b.registry.DisconnectAll()
	b.logger.WithFields(logrus.Fields{
		"item_id": b.session.ID,
		"token":   b.session.Token,
	}).Info("Session ended")
	b.session = nil
	b.media = nil
	b.out.Quit()
}

// emitChanged posts a property-delta map to the consumer.
func (b *Bridge) emitChanged(delta map[string]interface{}) {
	b.out.Changed(delta)
}

// loopStatus recomputes the derived repeat mode from its inputs; it is never
// stored independently.
func (b *Bridge) loopStatus() models.LoopStatus {
	trackLoop := b.media != nil && b.media.Loop()
	return models.ComputeLoopStatus(trackLoop, b.playlist)
}

// affordanceEnabled reports whether the element at selector exists and is
// not aria-disabled.
func (b *Bridge) affordanceEnabled(selector string) bool {
	el := b.doc.Query(selector)
	return el != nil && el.Attr("aria-disabled") == "false"
}
