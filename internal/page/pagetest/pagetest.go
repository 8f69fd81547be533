// Package pagetest provides a scripted, in-memory implementation of the page
// capability interfaces. Tests register elements under the selectors the
// bridge is configured with and fire events by hand.
package pagetest

import (
	"net/url"

	"mediabridge/internal/page"
)

// Page is a scripted page.Document.
type Page struct {
	url        *url.URL
	fullscreen bool

	elements map[string]*Element
	lists    map[string][]*Element
	media    map[string]*Media

	events      *eventSet
	navNextID   int
	navHandlers map[int]page.Handler
}

var _ page.Document = (*Page)(nil)

func New(rawURL string) *Page {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic("pagetest: bad url: " + err.Error())
	}
	return &Page{
		url:         u,
		elements:    map[string]*Element{},
		lists:       map[string][]*Element{},
		media:       map[string]*Media{},
		events:      newEventSet(),
		navHandlers: map[int]page.Handler{},
	}
}

// Navigate changes the location and fires the page-transition signal, like a
// soft navigation on the real page.
func (p *Page) Navigate(rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic("pagetest: bad url: " + err.Error())
	}
	p.url = u
	for _, h := range p.navHandlers {
		h()
	}
}

// AddElement registers el under selector. Later registrations replace
// earlier ones, which is how tests model DOM churn across navigations.
func (p *Page) AddElement(selector string, el *Element) {
	p.elements[selector] = el
}

// RemoveElement drops the element registered under selector.
func (p *Page) RemoveElement(selector string) {
	delete(p.elements, selector)
}

// AddList registers the elements QueryAll resolves for selector.
func (p *Page) AddList(selector string, els ...*Element) {
	p.lists[selector] = els
}

// AddMedia registers m under selector.
func (p *Page) AddMedia(selector string, m *Media) {
	p.media[selector] = m
}

func (p *Page) RemoveMedia(selector string) {
	delete(p.media, selector)
}

// SetFullscreen flips the fullscreen flag and fires "fullscreenchange".
func (p *Page) SetFullscreen(on bool) {
	p.fullscreen = on
	p.events.fire("fullscreenchange")
}

func (p *Page) Location() *url.URL {
	u := *p.url
	return &u
}

func (p *Page) Fullscreen() bool { return p.fullscreen }

func (p *Page) Subscribe(event string, h page.Handler) (cancel func()) {
	return p.events.subscribe(event, h)
}

func (p *Page) OnNavigate(h page.Handler) (cancel func()) {
	p.navNextID++
	id := p.navNextID
	p.navHandlers[id] = h
	return func() { delete(p.navHandlers, id) }
}

func (p *Page) Query(selector string) page.Element {
	if el, ok := p.elements[selector]; ok {
		return el
	}
	return nil
}

func (p *Page) QueryAll(selector string) []page.Element {
	els := p.lists[selector]
	out := make([]page.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out
}

func (p *Page) Media(selector string) page.MediaElement {
	if m, ok := p.media[selector]; ok {
		return m
	}
	return nil
}

// eventSet is a page-or-element scoped named-event registry.
type eventSet struct {
	nextID int
	subs   map[string]map[int]page.Handler
}

func newEventSet() *eventSet {
	return &eventSet{subs: map[string]map[int]page.Handler{}}
}

func (s *eventSet) subscribe(event string, h page.Handler) (cancel func()) {
	s.nextID++
	id := s.nextID
	if s.subs[event] == nil {
		s.subs[event] = map[int]page.Handler{}
	}
	s.subs[event][id] = h
	return func() { delete(s.subs[event], id) }
}

func (s *eventSet) fire(event string) {
	// Snapshot first: handlers may unsubscribe or resubscribe while firing.
	handlers := make([]page.Handler, 0, len(s.subs[event]))
	for _, h := range s.subs[event] {
		handlers = append(handlers, h)
	}
	for _, h := range handlers {
		h()
	}
}

func (s *eventSet) active() int {
	n := 0
	for _, m := range s.subs {
		n += len(m)
	}
	return n
}
