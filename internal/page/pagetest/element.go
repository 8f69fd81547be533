package pagetest

import "mediabridge/internal/page"

// Element is a scripted page.Element. Clicks and context menus are counted,
// and an optional OnClick hook lets a test attach page-side behavior to an
// affordance (a mute button that actually mutes, a previous button that
// restarts the item, ...).
type Element struct {
	attrs map[string]string
	text  string

	events     *eventSet
	attrNextID int
	attrSubs   map[string]map[int]page.Handler

	Clicks       int
	ContextMenus int
	OnClick      func()
}

var _ page.Element = (*Element)(nil)

func NewElement() *Element {
	return &Element{
		attrs:    map[string]string{},
		events:   newEventSet(),
		attrSubs: map[string]map[int]page.Handler{},
	}
}

// WithAttr sets an attribute without firing watchers, for test setup.
func (e *Element) WithAttr(name, value string) *Element {
	e.attrs[name] = value
	return e
}

// WithText sets the element text, for test setup.
func (e *Element) WithText(text string) *Element {
	e.text = text
	return e
}

// SetAttr mutates an attribute and fires its watchers.
func (e *Element) SetAttr(name, value string) {
	e.attrs[name] = value
	e.fireAttr(name)
}

// RemoveAttr drops an attribute and fires its watchers.
func (e *Element) RemoveAttr(name string) {
	delete(e.attrs, name)
	e.fireAttr(name)
}

// Fire delivers the named event to current subscribers.
func (e *Element) Fire(event string) {
	e.events.fire(event)
}

// ActiveSubscriptions counts live event subscriptions, attribute watchers
// included.
func (e *Element) ActiveSubscriptions() int {
	n := e.events.active()
	for _, m := range e.attrSubs {
		n += len(m)
	}
	return n
}

func (e *Element) Attr(name string) string { return e.attrs[name] }
func (e *Element) Text() string            { return e.text }

func (e *Element) Click() {
	e.Clicks++
	if e.OnClick != nil {
		e.OnClick()
	}
	e.events.fire("click")
}

func (e *Element) ContextMenu() {
	e.ContextMenus++
	e.events.fire("contextmenu")
}

func (e *Element) Subscribe(event string, h page.Handler) (cancel func()) {
	return e.events.subscribe(event, h)
}

func (e *Element) WatchAttr(name string, h page.Handler) (cancel func()) {
	e.attrNextID++
	id := e.attrNextID
	if e.attrSubs[name] == nil {
		e.attrSubs[name] = map[int]page.Handler{}
	}
	e.attrSubs[name][id] = h
	return func() { delete(e.attrSubs[name], id) }
}

func (e *Element) fireAttr(name string) {
	handlers := make([]page.Handler, 0, len(e.attrSubs[name]))
	for _, h := range e.attrSubs[name] {
		handlers = append(handlers, h)
	}
	for _, h := range handlers {
		h()
	}
}
