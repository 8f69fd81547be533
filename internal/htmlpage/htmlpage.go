// Package htmlpage implements the page capability interfaces over a parsed
// HTML document. It is the host-side adapter the binary runs against: the
// document file stands in for the live page, and rewriting it is a soft
// navigation. Element structure, text and attributes come straight from the
// markup; media playback state is simulated on top of it.
//
// Page is not safe for concurrent use; the host serializes all access
// through the bridge's run loop.
package htmlpage

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"golang.org/x/net/html"

	"mediabridge/internal/page"
)

// Page is an HTML-document-backed page.Document.
type Page struct {
	loc        *url.URL
	doc        *goquery.Document
	fullscreen bool

	events *nodeEvents
	attrs  *nodeEvents

	navNextID   int
	navHandlers map[int]page.Handler

	mediaSel string
	media    *mediaElement
}

var _ page.Document = (*Page)(nil)

// Parse builds a page from raw HTML at the given location.
func Parse(rawURL, src string) (*Page, error) {
	p := &Page{
		events:      newNodeEvents(),
		attrs:       newNodeEvents(),
		navHandlers: map[int]page.Handler{},
	}
	if err := p.load(rawURL, src); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFile reads an HTML file and builds a page. The location is taken from
// the document's canonical link when present, else the file itself.
func LoadFile(path string) (*Page, error) {
	rawURL, src, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return Parse(rawURL, src)
}

// Navigate replaces the document and location, drops every element
// subscription (the old nodes are gone), and fires the page-transition
// signal. Navigation handlers themselves survive, like listeners on the
// window of a single-page application.
func (p *Page) Navigate(rawURL, src string) error {
	if err := p.load(rawURL, src); err != nil {
		return err
	}
	for _, h := range p.navHandlers {
		h()
	}
	return nil
}

// NavigateFile re-reads the backing file and navigates to its content.
func (p *Page) NavigateFile(path string) error {
	rawURL, src, err := readDocument(path)
	if err != nil {
		return err
	}
	return p.Navigate(rawURL, src)
}

func (p *Page) load(rawURL, src string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse location: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	p.loc = u
	p.doc = doc
	p.events.clear()
	p.attrs.clear()
	p.media = nil
	p.mediaSel = ""
	return nil
}

func (p *Page) Location() *url.URL {
	u := *p.loc
	return &u
}

func (p *Page) Fullscreen() bool { return p.fullscreen }

// SetFullscreen flips the fullscreen flag and fires "fullscreenchange".
func (p *Page) SetFullscreen(on bool) {
	p.fullscreen = on
	p.events.fire(nil, "fullscreenchange")
}

// Subscribe registers a page-level event handler (nil node key).
func (p *Page) Subscribe(event string, h page.Handler) (cancel func()) {
	return p.events.subscribe(nil, event, h)
}

func (p *Page) OnNavigate(h page.Handler) (cancel func()) {
	p.navNextID++
	id := p.navNextID
	p.navHandlers[id] = h
	return func() { delete(p.navHandlers, id) }
}

func (p *Page) Query(selector string) page.Element {
	s := p.doc.Find(selector).First()
	if s.Length() == 0 {
		return nil
	}
	return &element{p: p, s: s}
}

func (p *Page) QueryAll(selector string) []page.Element {
	nodes := p.doc.Find(selector).Nodes
	return lo.Map(nodes, func(n *html.Node, _ int) page.Element {
		return &element{p: p, s: p.doc.FindNodes(n)}
	})
}

func (p *Page) Media(selector string) page.MediaElement {
	if p.media != nil && p.mediaSel == selector {
		return p.media
	}
	s := p.doc.Find(selector).First()
	if s.Length() == 0 {
		return nil
	}
	p.media = &mediaElement{
		element: element{p: p, s: s},
		volume:  1.0,
		rate:    1.0,
	}
	p.mediaSel = selector
	return p.media
}

// readDocument loads an HTML file and derives its location.
func readDocument(path string) (rawURL, src string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read document: %w", err)
	}
	src = string(data)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return "", "", fmt.Errorf("parse document: %w", err)
	}
	if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok && href != "" {
		return href, src, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}
	return "file://" + abs, src, nil
}

// element adapts one DOM node.
type element struct {
	p *Page
	s *goquery.Selection
}

var _ page.Element = (*element)(nil)

func (e *element) node() *html.Node { return e.s.Nodes[0] }

func (e *element) Attr(name string) string {
	return e.s.AttrOr(name, "")
}

func (e *element) Text() string {
	return strings.TrimSpace(e.s.Text())
}

func (e *element) Click() {
	e.p.events.fire(e.node(), "click")
}

func (e *element) ContextMenu() {
	e.p.events.fire(e.node(), "contextmenu")
}

func (e *element) Subscribe(event string, h page.Handler) (cancel func()) {
	return e.p.events.subscribe(e.node(), event, h)
}

func (e *element) WatchAttr(name string, h page.Handler) (cancel func()) {
	return e.p.attrs.subscribe(e.node(), name, h)
}

func (e *element) setAttr(name, value string) {
	e.s.SetAttr(name, value)
	e.p.attrs.fire(e.node(), name)
}

func (e *element) removeAttr(name string) {
	e.s.RemoveAttr(name)
	e.p.attrs.fire(e.node(), name)
}

// mediaElement simulates playback state on top of the markup. The duration
// comes from the element's data-duration attribute.
type mediaElement struct {
	element

	current float64
	playing bool
	ended   bool
	muted   bool
	volume  float64
	rate    float64
}

var _ page.MediaElement = (*mediaElement)(nil)

func (m *mediaElement) Play() {
	m.playing = true
	m.ended = false
	m.p.events.fire(m.node(), "play")
}

func (m *mediaElement) Pause() {
	m.playing = false
	m.p.events.fire(m.node(), "pause")
}

func (m *mediaElement) Paused() bool { return !m.playing }
func (m *mediaElement) Ended() bool  { return m.ended }

func (m *mediaElement) CurrentTime() float64 { return m.current }

func (m *mediaElement) SetCurrentTime(seconds float64) {
	d := m.Duration()
	if math.IsNaN(d) {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	if seconds > d {
		seconds = d
	}
	m.current = seconds
	m.p.events.fire(m.node(), "seeked")
	if m.current >= d {
		m.playing = false
		m.ended = true
		m.p.events.fire(m.node(), "ended")
	}
}

func (m *mediaElement) Duration() float64 {
	v := m.Attr("data-duration")
	if v == "" {
		return math.NaN()
	}
	d, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return d
}

func (m *mediaElement) PlaybackRate() float64 { return m.rate }

// SetPlaybackRate changes the simulated rate and fires ratechange.
func (m *mediaElement) SetPlaybackRate(rate float64) {
	m.rate = rate
	m.p.events.fire(m.node(), "ratechange")
}

func (m *mediaElement) Muted() bool     { return m.muted }
func (m *mediaElement) Volume() float64 { return m.volume }

// SetMuted flips mute and fires volumechange.
func (m *mediaElement) SetMuted(muted bool) {
	m.muted = muted
	m.p.events.fire(m.node(), "volumechange")
}

func (m *mediaElement) Loop() bool {
	_, ok := m.s.Attr("loop")
	return ok
}

// SetLoop mutates the loop attribute and fires its watchers.
func (m *mediaElement) SetLoop(loop bool) {
	if loop {
		m.setAttr("loop", "")
	} else {
		m.removeAttr("loop")
	}
}

// nodeEvents is a node-keyed named-event registry. Page-level events use a
// nil node key.
type nodeEvents struct {
	nextID int
	subs   map[*html.Node]map[string]map[int]page.Handler
}

func newNodeEvents() *nodeEvents {
	return &nodeEvents{subs: map[*html.Node]map[string]map[int]page.Handler{}}
}

func (s *nodeEvents) subscribe(n *html.Node, event string, h page.Handler) (cancel func()) {
	s.nextID++
	id := s.nextID
	if s.subs[n] == nil {
		s.subs[n] = map[string]map[int]page.Handler{}
	}
	if s.subs[n][event] == nil {
		s.subs[n][event] = map[int]page.Handler{}
	}
	s.subs[n][event][id] = h
	return func() { delete(s.subs[n][event], id) }
}

func (s *nodeEvents) fire(n *html.Node, event string) {
	handlers := make([]page.Handler, 0, len(s.subs[n][event]))
	for _, h := range s.subs[n][event] {
		handlers = append(handlers, h)
	}
	for _, h := range handlers {
		h()
	}
}

// clear drops element subscriptions but keeps page-level (nil key) ones,
// which belong to the page rather than to nodes the navigation replaced.
func (s *nodeEvents) clear() {
	pageSubs := s.subs[nil]
	s.subs = map[*html.Node]map[string]map[int]page.Handler{}
	if pageSubs != nil {
		s.subs[nil] = pageSubs
	}
}
