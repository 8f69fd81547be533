// Package page defines the capability surface the bridge needs from the
// hosting page-automation layer: resolving elements by selector, reading the
// location, and subscribing to page and element events. The bridge owns no
// page state of its own; everything here is supplied by the host.
package page

import "net/url"

// Handler is invoked when a subscribed event fires. Events carry no payload;
// handlers read the current state off the element they observe.
type Handler func()

// EventSource is anything that emits named events.
type EventSource interface {
	// Subscribe registers h for the named event and returns a func that
	// removes the registration.
	Subscribe(event string, h Handler) (cancel func())
}

// Element is a single resolved page element.
type Element interface {
	EventSource

	// Attr returns the value of the named attribute, or "" when absent.
	Attr(name string) string

	// Text returns the element's visible text content.
	Text() string

	// Click synthesizes an activation on the element.
	Click()

	// ContextMenu synthesizes a secondary (right-click) activation.
	ContextMenu()

	// WatchAttr observes mutations of the named attribute.
	WatchAttr(name string, h Handler) (cancel func())
}

// MediaElement is the playable element a session binds to.
type MediaElement interface {
	Element

	Play()
	Pause()
	Paused() bool
	Ended() bool

	// CurrentTime and Duration are in seconds, matching the element's own
	// unit; the bridge converts to microseconds at the wire boundary.
	CurrentTime() float64
	SetCurrentTime(seconds float64)
	Duration() float64

	PlaybackRate() float64
	Muted() bool
	Volume() float64
	Loop() bool
}

// Document is the bridge's view of the hosting page. Page-level events such
// as "fullscreenchange" arrive through the embedded EventSource.
type Document interface {
	EventSource

	Location() *url.URL

	// Query returns the first element matching selector, or nil when the
	// selector resolves nothing.
	Query(selector string) Element

	// QueryAll returns every element matching selector, in document order.
	QueryAll(selector string) []Element

	// Media returns the media element matching selector, or nil.
	Media(selector string) MediaElement

	Fullscreen() bool

	// OnNavigate registers h for page-transition signals. The host fires it
	// after each soft navigation; a full reload is a new Document.
	OnNavigate(h Handler) (cancel func())
}
