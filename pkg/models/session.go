package models

// PlaybackStatus describes what the bound media element is currently doing.
type PlaybackStatus string

const (
	StatusPlaying PlaybackStatus = "Playing"
	StatusPaused  PlaybackStatus = "Paused"
	StatusStopped PlaybackStatus = "Stopped"
)

// LoopStatus is the derived repeat mode exposed to the remote consumer.
// It is never stored on its own; recompute it with ComputeLoopStatus.
type LoopStatus string

const (
	LoopNone     LoopStatus = "None"
	LoopTrack    LoopStatus = "Track"
	LoopPlaylist LoopStatus = "Playlist"
)

// Metadata holds the fixed metadata keys for the bound item. The json tags
// are the wire keys the remote consumer expects.
type Metadata struct {
	TrackID string   `json:"mpris:trackid"`
	ArtURL  string   `json:"mpris:artUrl"`
	URL     string   `json:"xesam:url"`
	Title   string   `json:"xesam:title"`
	Artists []string `json:"xesam:artist"`
	Length  int64    `json:"mpris:length"` // microseconds
}

// Playlist is the multi-item sequencing context of the current session.
// Index is 0-based and meaningless while Length == 0.
type Playlist struct {
	ID      string `json:"id"`
	Index   int    `json:"index"`
	Length  int    `json:"length"`
	Loop    bool   `json:"loop"`
	Shuffle bool   `json:"shuffle"`
}

// NewPlaylist returns an empty playlist context.
func NewPlaylist() Playlist {
	return Playlist{Index: -1}
}

// Session is the bound state for the currently playing item. ID is fixed for
// the session's lifetime; the remaining fields track the page.
type Session struct {
	ID             string         `json:"id"`
	Token          string         // per-bind instance token, log-only
	Metadata       Metadata       `json:"metadata"`
	PlaybackStatus PlaybackStatus `json:"playbackStatus"`
	Shuffle        bool           `json:"shuffle"`
	Rate           float64        `json:"rate"`
	Volume         float64        `json:"volume"`
	CanGoNext      bool           `json:"canGoNext"`
	CanGoPrevious  bool           `json:"canGoPrevious"`
}

// ComputeLoopStatus derives the repeat mode from the element-level loop flag
// and the playlist context. Track loop wins over playlist loop.
func ComputeLoopStatus(trackLoop bool, pl Playlist) LoopStatus {
	if trackLoop {
		return LoopTrack
	}
	if pl.Length > 0 && pl.Loop {
		return LoopPlaylist
	}
	return LoopNone
}

// Micros converts a non-negative seconds value to integer microseconds,
// truncating toward zero.
func Micros(seconds float64) int64 {
	return int64(seconds * 1e6)
}
