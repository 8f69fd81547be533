package bridge

import (
	"github.com/samber/lo"

	"mediabridge/internal/port"
	"mediabridge/pkg/models"
)

type commandFunc func(args []interface{}) interface{}

// HandleCommand dispatches one inbound remote-control command. Commands
// arriving with no bound session are dropped without acknowledgement; every
// dispatched command acknowledges on the outbound channel, even when its
// result is nil.
func (b *Bridge) HandleCommand(cmd port.Command) {
	if b.session == nil || b.media == nil {
		b.logger.WithField("method", cmd.Method).Debug("Dropping command with no bound session")
		return
	}

	fn, ok := b.commands[cmd.Method]
	if !ok {
		b.logger.WithFields(map[string]interface{}{
			"method": cmd.Method,
			"known":  lo.Keys(b.commands),
		}).Error("Unknown remote command")
		return
	}

	result := fn(cmd.Args)
	b.out.Return(cmd.Method, result)
}

func (b *Bridge) commandTable() map[string]commandFunc {
	return map[string]commandFunc{
		"Get":         b.cmdGet,
		"Set":         b.cmdSet,
		"Play":        b.cmdPlay,
		"Pause":       b.cmdPause,
		"PlayPause":   b.cmdPlayPause,
		"Stop":        b.cmdStop,
		"Next":        b.cmdNext,
		"Previous":    b.cmdPrevious,
		"Seek":        b.cmdSeek,
		"SetPosition": b.cmdSetPosition,
	}
}

// cmdGet answers on-demand property reads. Only Position is computable here;
// everything else reaches the consumer through deltas.
func (b *Bridge) cmdGet(args []interface{}) interface{} {
	switch argString(args, 1) {
	case "Position":
		return models.Micros(b.media.CurrentTime())
	}
	return nil
}

func (b *Bridge) cmdSet(args []interface{}) interface{} {
	switch argString(args, 1) {
	case "Rate":
		b.setPlaybackRate(argFloat(args, 2))

	case "Volume":
		// The bridge never sets a continuous level; it only flips mute when
		// the boolean sense of the requested volume differs.
		wantMuted := argFloat(args, 2) == 0
		if b.media.Muted() != wantMuted {
			if btn := b.doc.Query(b.cfg.Selectors.MuteButton); btn != nil {
				btn.Click()
			}
		}

	case "Shuffle":
		if argBool(args, 2) != b.playlist.Shuffle {
			if btn := b.doc.Query(b.cfg.Selectors.PlaylistShuffle); btn != nil {
				btn.Click()
			}
		}

	case "LoopStatus":
		switch models.LoopStatus(argString(args, 2)) {
		case models.LoopNone:
			b.setLoop(false)
			b.setPlaylistLoop(false)
		case models.LoopTrack:
			b.setLoop(true)
		case models.LoopPlaylist:
			if b.playlist.Length == 0 {
				return nil
			}
			b.setLoop(false)
			b.setPlaylistLoop(true)
		}
	}
	return nil
}

func (b *Bridge) cmdPlay(args []interface{}) interface{} {
	b.media.Play()
	return nil
}

func (b *Bridge) cmdPause(args []interface{}) interface{} {
	b.media.Pause()
	return nil
}

func (b *Bridge) cmdPlayPause(args []interface{}) interface{} {
	if b.media.Paused() || b.media.Ended() {
		b.media.Play()
	} else {
		b.media.Pause()
	}
	return nil
}

// cmdStop seeks to end-of-media; the element offers no stop primitive.
func (b *Bridge) cmdStop(args []interface{}) interface{} {
	b.media.SetCurrentTime(b.media.Duration())
	return nil
}

func (b *Bridge) cmdNext(args []interface{}) interface{} {
	if btn := b.doc.Query(b.cfg.Selectors.NextButton); btn != nil && btn.Attr("aria-disabled") == "false" {
		btn.Click()
	}
	return nil
}

// cmdPrevious clicks the previous affordance. Past the 2 second mark the
// page's affordance restarts the current item instead of navigating, so a
// second delayed click follows: the first restarts, the second navigates.
func (b *Bridge) cmdPrevious(args []interface{}) interface{} {
	btn := b.doc.Query(b.cfg.Selectors.PrevButton)
	if btn == nil || btn.Attr("aria-disabled") != "false" {
		return nil
	}
	if b.media.CurrentTime() > 2 {
		b.runSequence([]step{
			{delay: b.cfg.Timing.PreviousDoubleClick(), run: btn.Click},
		})
	}
	btn.Click()
	return nil
}

// cmdSeek adds a microsecond offset to the current position. Reaching or
// passing end-of-media has no native semantics, so it falls back to Next.
func (b *Bridge) cmdSeek(args []interface{}) interface{} {
	offset := argFloat(args, 0)
	b.media.SetCurrentTime(b.media.CurrentTime() + offset/1e6)
	if b.media.CurrentTime() >= b.media.Duration() {
		b.cmdNext(nil)
	}
	return nil
}

// cmdSetPosition applies an absolute position, but only when the target item
// still is the bound session; late commands against a replaced session drop.
func (b *Bridge) cmdSetPosition(args []interface{}) interface{} {
	if argString(args, 0) != b.session.ID {
		b.logger.WithFields(map[string]interface{}{
			"target":  argString(args, 0),
			"current": b.session.ID,
		}).Debug("Dropping SetPosition for stale item")
		return nil
	}
	b.media.SetCurrentTime(argFloat(args, 1) / 1e6)
	return nil
}

// Argument helpers: inbound args are decoded JSON, so numbers arrive as
// float64. Missing or mistyped entries read as zero values.

func argString(args []interface{}, i int) string {
	if i < len(args) {
		if s, ok := args[i].(string); ok {
			return s
		}
	}
	return ""
}

func argFloat(args []interface{}, i int) float64 {
	if i < len(args) {
		switch v := args[i].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case int64:
			return float64(v)
		}
	}
	return 0
}

func argBool(args []interface{}, i int) bool {
	if i < len(args) {
		if v, ok := args[i].(bool); ok {
			return v
		}
	}
	return false
}
