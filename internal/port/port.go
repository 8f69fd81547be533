// Package port carries the bridge's channel to the external consumer: typed
// outbound notifications and inbound remote-control commands. The consumer's
// own protocol (D-Bus, native messaging, ...) lives on the far side of this
// boundary and is not this package's concern.
package port

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Outbound message kinds.
const (
	TypeChanged = "changed"
	TypeSeeked  = "seeked"
	TypeReturn  = "return"
	TypeQuit    = "quit"
)

// Message is one outbound notification, tagged with the fixed source
// identifier of the emitting bridge.
type Message struct {
	Source string        `json:"source"`
	Type   string        `json:"type"`
	Method string        `json:"method,omitempty"`
	Args   []interface{} `json:"args,omitempty"`
}

// Command is one inbound remote-control call.
type Command struct {
	Method string        `json:"method"`
	Args   []interface{} `json:"args"`
}

// Emitter is the outbound half of the channel as seen by the bridge.
type Emitter interface {
	// Changed posts a partial or full property-delta map.
	Changed(delta map[string]interface{})

	// Seeked posts a discrete position-jump notification in microseconds.
	Seeked(positionMicros int64)

	// Return acknowledges a dispatched command.
	Return(method string, result interface{})

	// Quit signals session end.
	Quit()
}

// Stdio is a JSON-lines Emitter over a writer, one message per line. Paired
// with ReadCommands on stdin it gives the binary a native-messaging style
// host transport.
type Stdio struct {
	source string
	enc    *json.Encoder
	logger *logrus.Logger
}

func NewStdio(source string, w io.Writer, logger *logrus.Logger) *Stdio {
	return &Stdio{
		source: source,
		enc:    json.NewEncoder(w),
		logger: logger,
	}
}

func (p *Stdio) post(m Message) {
	if err := p.enc.Encode(m); err != nil {
		p.logger.WithError(err).Error("Failed to write outbound message")
	}
}

func (p *Stdio) Changed(delta map[string]interface{}) {
	p.post(Message{Source: p.source, Type: TypeChanged, Args: []interface{}{delta}})
}

func (p *Stdio) Seeked(positionMicros int64) {
	p.post(Message{Source: p.source, Type: TypeSeeked, Args: []interface{}{positionMicros}})
}

func (p *Stdio) Return(method string, result interface{}) {
	p.post(Message{Source: p.source, Type: TypeReturn, Method: method, Args: []interface{}{result}})
}

func (p *Stdio) Quit() {
	p.post(Message{Source: p.source, Type: TypeQuit})
}

// ReadCommands decodes newline-delimited commands from r and hands each to
// handle, until EOF. Blank lines are skipped.
func ReadCommands(r io.Reader, handle func(Command)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var cmd Command
		if err := json.Unmarshal(line, &cmd); err != nil {
			return fmt.Errorf("decode command: %w", err)
		}
		handle(cmd)
	}
	return scanner.Err()
}
