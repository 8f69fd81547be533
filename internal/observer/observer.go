// Package observer provides disposable event bindings scoped to a playback
// session. The registry holds exactly the bindings of the current session and
// is fully cleared before a new session installs its own, which is what keeps
// events from being delivered twice across a rebind.
package observer

import "mediabridge/internal/page"

// Binding is one active subscription. Disconnect is idempotent; calling it
// more than once is safe and does nothing after the first call.
type Binding struct {
	cancel func()
}

// Disconnect removes the binding exactly once.
func (b *Binding) Disconnect() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// Registry is the set of active bindings for the current session.
type Registry struct {
	bindings []*Binding
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe binds h to the named event on src and records the binding.
func (r *Registry) Subscribe(src page.EventSource, event string, h page.Handler) *Binding {
	return r.Track(src.Subscribe(event, h))
}

// Track records an externally created cancel func (attribute watches and the
// like) as a binding.
func (r *Registry) Track(cancel func()) *Binding {
	b := &Binding{cancel: cancel}
	r.bindings = append(r.bindings, b)
	return b
}

// DisconnectAll disconnects every binding and empties the registry. It runs
// synchronously so a caller can rely on teardown being complete on return.
func (r *Registry) DisconnectAll() {
	for _, b := range r.bindings {
		b.Disconnect()
	}
	r.bindings = nil
}

// Len reports the number of recorded bindings.
func (r *Registry) Len() int {
	return len(r.bindings)
}
