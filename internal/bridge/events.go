package bridge

import (
	"mediabridge/internal/page"
	"mediabridge/pkg/models"
)

// The event bridge: each raw page event maps to one minimal delta. All
// subscriptions go through the registry so the next bind tears them down.
func (b *Bridge) subscribeMedia(media page.MediaElement) {
	handlers := map[string]page.Handler{
		"play":    func() { b.setPlaybackStatus(models.StatusPlaying) },
		"playing": func() { b.setPlaybackStatus(models.StatusPlaying) },
		"pause":   func() { b.setPlaybackStatus(models.StatusPaused) },
		"ended":   func() { b.setPlaybackStatus(models.StatusStopped) },

		// The page also fires seeked on jumps that are not user seeks, such
		// as restarting from the top after Stopped. Those are forwarded
		// unchanged; telling them apart would take page internals the
		// bridge cannot see.
		"seeked": func() {
			b.out.Seeked(models.Micros(media.CurrentTime()))
		},

		"ratechange": func() {
			rate := media.PlaybackRate()
			if b.session != nil {
				b.session.Rate = rate
			}
			b.emitChanged(map[string]interface{}{"Rate": rate})
		},

		"volumechange": func() {
			volume := media.Volume()
			if media.Muted() {
				volume = 0.0
			}
			b.emitChanged(map[string]interface{}{"Volume": volume})
		},
	}

	for event, handler := range handlers {
		b.registry.Subscribe(media, event, handler)
	}

	b.registry.Track(media.WatchAttr("loop", func() {
		b.emitChanged(map[string]interface{}{"LoopStatus": b.loopStatus()})
	}))

	b.registry.Subscribe(b.doc, "fullscreenchange", func() {
		b.emitChanged(map[string]interface{}{"Fullscreen": b.doc.Fullscreen()})
	})
}

func (b *Bridge) setPlaybackStatus(status models.PlaybackStatus) {
	if b.session != nil {
		b.session.PlaybackStatus = status
	}
	b.emitChanged(map[string]interface{}{"PlaybackStatus": status})
}
