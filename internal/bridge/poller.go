package bridge

import (
	"math"
	"strings"

	"mediabridge/internal/page"
)

// The readiness poller retries at a fixed interval until the page exposes
// everything a session needs: title text, artist text, and a media element
// with a known finite duration. There is no retry bound; only a superseding
// navigation stops it.

// startPoll cancels any in-flight poll and begins a fresh one, checking
// readiness immediately before falling back to the interval.
func (b *Bridge) startPoll() {
	b.pollSeq++
	b.stopPollTimer()
	b.poll(b.pollSeq)
}

// stopPoll cancels polling entirely.
func (b *Bridge) stopPoll() {
	b.pollSeq++
	b.stopPollTimer()
}

func (b *Bridge) stopPollTimer() {
	if b.cancelPoll != nil {
		b.cancelPoll()
		b.cancelPoll = nil
	}
}

// poll runs one readiness check. seq identifies the poll this callback
// belongs to; a stale seq means a navigation superseded it after the timer
// had already fired.
func (b *Bridge) poll(seq uint64) {
	if seq != b.pollSeq {
		return
	}

	title, artist, media, ok := b.readiness()
	if ok {
		b.stopPollTimer()
		b.bind(title, artist, media)
		return
	}

	b.cancelPoll = b.runner.After(b.cfg.Timing.PollInterval(), func() {
		b.poll(seq)
	})
}

// readiness resolves the minimum tuple required to bind a session.
func (b *Bridge) readiness() (title, artist string, media page.MediaElement, ok bool) {
	sel := b.cfg.Selectors

	titleEl := b.doc.Query(sel.Title)
	if titleEl == nil {
		return "", "", nil, false
	}
	title = strings.TrimSpace(titleEl.Text())
	if title == "" {
		return "", "", nil, false
	}

	artistEl := b.doc.Query(sel.Artist)
	if artistEl == nil {
		return "", "", nil, false
	}
	artist = strings.TrimSpace(artistEl.Text())
	if artist == "" {
		return "", "", nil, false
	}

	media = b.doc.Media(sel.Media)
	if media == nil {
		return "", "", nil, false
	}
	d := media.Duration()
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return "", "", nil, false
	}

	return title, artist, media, true
}
