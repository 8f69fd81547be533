package bridge

import (
	"math"
	"time"
)

// Simulated UI actuators: capabilities with no settable property are driven
// by scripted interaction sequences against the page's own menus.

// step is one synthesized interaction in a scripted sequence. A non-zero
// delay defers the step (and everything after it) by that much, which is how
// menu-animation settle time is modeled.
type step struct {
	delay time.Duration
	run   func()
}

// runSequence plays steps in order. Deferred steps capture the session
// generation at schedule time and no-op when it has moved on, so a settle
// timer cannot fire into a session it was not scheduled against.
func (b *Bridge) runSequence(steps []step) {
	gen := b.generation
	var next func(i int)
	next = func(i int) {
		for ; i < len(steps); i++ {
			s := steps[i]
			if s.delay > 0 {
				rest := i
				b.runner.After(s.delay, func() {
					if b.generation != gen {
						return
					}
					steps[rest].run()
					next(rest + 1)
				})
				return
			}
			s.run()
		}
	}
	next(0)
}

// setLoop drives the element-level loop flag through the context menu; the
// element exposes no direct control for it.
func (b *Bridge) setLoop(want bool) {
	if b.media.Loop() == want {
		return
	}

	b.runSequence([]step{
		// Right-click so the context menu shows up, then activate the loop
		// entry.
		{run: b.media.ContextMenu},
		{run: func() { b.clickMenuItem(b.cfg.Selectors.ContextMenuItems, b.cfg.Selectors.LoopMenuIndex) }},
	})
}

// setPlaylistLoop toggles the playlist's own loop affordance when the
// current state differs.
func (b *Bridge) setPlaylistLoop(want bool) {
	if b.playlist.Length == 0 || b.playlist.Loop == want {
		return
	}
	if btn := b.doc.Query(b.cfg.Selectors.PlaylistLoop); btn != nil {
		btn.Click()
	}
}

// setPlaybackRate picks the nearest entry of the page's discrete rate menu:
// quarter steps up to the second-highest option, everything above maps to
// the last one. Non-positive requests are rejected.
func (b *Bridge) setPlaybackRate(rate float64) {
	if rate <= 0 {
		return
	}

	menu := b.cfg.Rates.Menu
	choice := len(menu) - 1
	if q := int(math.Ceil(rate*4)) - 1; q < choice {
		choice = q
	}

	sel := b.cfg.Selectors
	b.runSequence([]step{
		// Open the settings menu, then its speed submenu.
		{run: func() { b.clickSelector(sel.SettingsButton) }},
		{run: func() { b.clickMenuItem(sel.SettingsMenuItems, sel.SpeedMenuIndex) }},
		// Wait out the submenu animation, select the speed, close the menu.
		{delay: b.cfg.Timing.SettleDelay(), run: func() { b.clickMenuItem(sel.SettingsMenuItems, choice) }},
		{run: func() { b.clickSelector(sel.SettingsButton) }},
	})
}

func (b *Bridge) clickSelector(selector string) {
	if el := b.doc.Query(selector); el != nil {
		el.Click()
	}
}

func (b *Bridge) clickMenuItem(selector string, index int) {
	items := b.doc.QueryAll(selector)
	if index >= 0 && index < len(items) {
		items[index].Click()
	}
}
