package port

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestStdio(buf *bytes.Buffer) *Stdio {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewStdio("youtube", buf, logger)
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad output line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestStdioMessageShapes(t *testing.T) {
	var buf bytes.Buffer
	p := newTestStdio(&buf)

	p.Changed(map[string]interface{}{"PlaybackStatus": "Paused"})
	p.Seeked(1500000)
	p.Return("Get", 42)
	p.Quit()

	msgs := decodeLines(t, &buf)
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}

	for i, msg := range msgs {
		if msg["source"] != "youtube" {
			t.Errorf("message %d: expected source youtube, got %v", i, msg["source"])
		}
	}

	if msgs[0]["type"] != TypeChanged {
		t.Errorf("expected changed, got %v", msgs[0]["type"])
	}
	delta := msgs[0]["args"].([]interface{})[0].(map[string]interface{})
	if delta["PlaybackStatus"] != "Paused" {
		t.Errorf("unexpected delta: %v", delta)
	}

	if msgs[1]["type"] != TypeSeeked {
		t.Errorf("expected seeked, got %v", msgs[1]["type"])
	}
	if pos := msgs[1]["args"].([]interface{})[0].(float64); pos != 1500000 {
		t.Errorf("expected position 1500000, got %v", pos)
	}

	if msgs[2]["type"] != TypeReturn || msgs[2]["method"] != "Get" {
		t.Errorf("unexpected return message: %v", msgs[2])
	}

	if msgs[3]["type"] != TypeQuit {
		t.Errorf("expected quit, got %v", msgs[3]["type"])
	}
	if _, present := msgs[3]["args"]; present {
		t.Error("quit must carry no payload")
	}
}

func TestReadCommands(t *testing.T) {
	input := `{"method":"Play","args":[]}

{"method":"SetPosition","args":["abc123",5000000]}
`
	var got []Command
	err := ReadCommands(strings.NewReader(input), func(cmd Command) {
		got = append(got, cmd)
	})
	if err != nil {
		t.Fatalf("ReadCommands: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(got))
	}
	if got[0].Method != "Play" || len(got[0].Args) != 0 {
		t.Errorf("unexpected first command: %+v", got[0])
	}
	if got[1].Method != "SetPosition" {
		t.Errorf("unexpected second command: %+v", got[1])
	}
	if got[1].Args[0] != "abc123" {
		t.Errorf("expected item id arg, got %v", got[1].Args[0])
	}
	if got[1].Args[1].(float64) != 5000000 {
		t.Errorf("expected position arg, got %v", got[1].Args[1])
	}
}

func TestReadCommandsRejectsGarbage(t *testing.T) {
	err := ReadCommands(strings.NewReader("not json\n"), func(Command) {
		t.Error("handler must not run for undecodable input")
	})
	if err == nil {
		t.Error("expected decode error, got nil")
	}
}
