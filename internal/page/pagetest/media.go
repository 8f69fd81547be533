package pagetest

import "mediabridge/internal/page"

// Media is a scripted page.MediaElement. Mutators fire the same events the
// real element would, so the bridge's observers see realistic sequences.
type Media struct {
	Element

	duration float64
	current  float64
	playing  bool
	ended    bool
	muted    bool
	volume   float64
	rate     float64
	loop     bool
}

var _ page.MediaElement = (*Media)(nil)

func NewMedia(duration float64) *Media {
	m := &Media{
		Element:  *NewElement(),
		duration: duration,
		volume:   1.0,
		rate:     1.0,
	}
	return m
}

func (m *Media) Play() {
	m.playing = true
	m.ended = false
	m.Fire("play")
}

func (m *Media) Pause() {
	m.playing = false
	m.Fire("pause")
}

func (m *Media) Paused() bool { return !m.playing }
func (m *Media) Ended() bool  { return m.ended }

func (m *Media) CurrentTime() float64 { return m.current }

// SetCurrentTime clamps like the real element and fires seeked, plus ended
// when the position lands on the duration.
func (m *Media) SetCurrentTime(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	if seconds > m.duration {
		seconds = m.duration
	}
	m.current = seconds
	m.Fire("seeked")
	if m.duration > 0 && m.current >= m.duration {
		m.playing = false
		m.ended = true
		m.Fire("ended")
	}
}

// Advance moves playback time without a seeked event, like ordinary
// progression.
func (m *Media) Advance(seconds float64) {
	m.current += seconds
	if m.current > m.duration {
		m.current = m.duration
	}
}

func (m *Media) Duration() float64 { return m.duration }

func (m *Media) SetDuration(seconds float64) { m.duration = seconds }

func (m *Media) PlaybackRate() float64 { return m.rate }

// SetPlaybackRate changes the rate and fires ratechange.
func (m *Media) SetPlaybackRate(rate float64) {
	m.rate = rate
	m.Fire("ratechange")
}

func (m *Media) Muted() bool     { return m.muted }
func (m *Media) Volume() float64 { return m.volume }

// SetMuted flips mute and fires volumechange.
func (m *Media) SetMuted(muted bool) {
	m.muted = muted
	m.Fire("volumechange")
}

// SetVolume changes the reported volume and fires volumechange.
func (m *Media) SetVolume(volume float64) {
	m.volume = volume
	m.Fire("volumechange")
}

func (m *Media) Loop() bool { return m.loop }

// SetLoop flips the loop flag and fires the attribute watch, like a
// mutation observer on the loop attribute would.
func (m *Media) SetLoop(loop bool) {
	m.loop = loop
	if loop {
		m.Element.SetAttr("loop", "")
	} else {
		m.Element.RemoveAttr("loop")
	}
}
