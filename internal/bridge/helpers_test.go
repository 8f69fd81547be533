package bridge

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"mediabridge/internal/config"
	"mediabridge/internal/page/pagetest"
)

// manualRunner executes posted work immediately and collects timers for the
// test to fire by hand, so every delayed behavior is deterministic.
type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

type manualRunner struct {
	timers []*manualTimer
}

func (r *manualRunner) Do(fn func()) { fn() }

func (r *manualRunner) After(d time.Duration, fn func()) (cancel func()) {
	t := &manualTimer{delay: d, fn: fn}
	r.timers = append(r.timers, t)
	return func() { t.stopped = true }
}

func (r *manualRunner) pending() []*manualTimer {
	var out []*manualTimer
	for _, t := range r.timers {
		if !t.fired && !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// fireNext runs the oldest pending timer and returns it.
func (r *manualRunner) fireNext(t *testing.T) *manualTimer {
	t.Helper()
	pending := r.pending()
	if len(pending) == 0 {
		t.Fatal("no pending timer to fire")
	}
	timer := pending[0]
	timer.fired = true
	timer.fn()
	return timer
}

// recorder captures everything the bridge posts outbound.
type methodReturn struct {
	method string
	result interface{}
}

type recorder struct {
	deltas  []map[string]interface{}
	seeks   []int64
	returns []methodReturn
	quits   int
}

func (r *recorder) Changed(delta map[string]interface{}) { r.deltas = append(r.deltas, delta) }
func (r *recorder) Seeked(pos int64)                     { r.seeks = append(r.seeks, pos) }
func (r *recorder) Return(method string, result interface{}) {
	r.returns = append(r.returns, methodReturn{method, result})
}
func (r *recorder) Quit() { r.quits++ }

func (r *recorder) lastDelta(t *testing.T) map[string]interface{} {
	t.Helper()
	if len(r.deltas) == 0 {
		t.Fatal("no delta emitted")
	}
	return r.deltas[len(r.deltas)-1]
}

func (r *recorder) reset() {
	r.deltas = nil
	r.seeks = nil
	r.returns = nil
	r.quits = 0
}

// fixture wires a bridge against a scripted page.
type fixture struct {
	t      *testing.T
	cfg    *config.Config
	page   *pagetest.Page
	out    *recorder
	runner *manualRunner
	bridge *Bridge

	title  *pagetest.Element
	artist *pagetest.Element
	media  *pagetest.Media
	next   *pagetest.Element
	prev   *pagetest.Element
	mute   *pagetest.Element
}

func newFixture(t *testing.T) *fixture {
	cfg := config.DefaultConfig()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		t:      t,
		cfg:    cfg,
		page:   pagetest.New("https://media.example/feed"),
		out:    &recorder{},
		runner: &manualRunner{},
	}
	f.bridge = New(cfg, f.page, f.out, f.runner, logger)
	f.bridge.Start()
	return f
}

// installWatchPage registers the elements a ready playable page exposes.
func (f *fixture) installWatchPage(duration float64) {
	sel := f.cfg.Selectors

	f.title = pagetest.NewElement().WithText("Test Title")
	f.page.AddElement(sel.Title, f.title)

	f.artist = pagetest.NewElement().WithText("Test Artist")
	f.page.AddElement(sel.Artist, f.artist)

	f.media = pagetest.NewMedia(duration)
	f.page.AddMedia(sel.Media, f.media)

	f.next = pagetest.NewElement().WithAttr("aria-disabled", "false")
	f.page.AddElement(sel.NextButton, f.next)

	f.prev = pagetest.NewElement().WithAttr("aria-disabled", "false")
	f.page.AddElement(sel.PrevButton, f.prev)

	f.mute = pagetest.NewElement()
	media := f.media
	f.mute.OnClick = func() { media.SetMuted(!media.Muted()) }
	f.page.AddElement(sel.MuteButton, f.mute)
}

// installPlaylist adds a playlist header with a 1-based "index / total"
// label plus loop and shuffle toggles.
func (f *fixture) installPlaylist(index, total int) (loopBtn, shuffleBtn *pagetest.Element) {
	sel := f.cfg.Selectors

	f.page.AddElement(sel.PlaylistHeader, pagetest.NewElement())
	f.page.AddElement(sel.PlaylistIndex,
		pagetest.NewElement().WithText(fmt.Sprintf("%d / %d", index, total)))

	loopBtn = pagetest.NewElement()
	f.page.AddElement(sel.PlaylistLoop, loopBtn)
	shuffleBtn = pagetest.NewElement()
	f.page.AddElement(sel.PlaylistShuffle, shuffleBtn)
	return loopBtn, shuffleBtn
}

// bind navigates to a ready playable page and binds a session.
func (f *fixture) bind(id string) {
	f.installWatchPage(300)
	f.page.Navigate("https://media.example/watch?v=" + id)
}

func watchURL(id, list string) string {
	u := "https://media.example/watch?v=" + id
	if list != "" {
		u += "&list=" + list
	}
	return u
}
