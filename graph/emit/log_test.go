package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitterTextMode(t *testing.T) {
	var buf bytes.Buffer
	e := NewLogEmitter(&buf, false)
	e.Emit(Event{RunID: "run-1", Seq: 3, NodeID: 7, Msg: "node_completed"})

	out := buf.String()
	if !strings.Contains(out, "node_completed") || !strings.Contains(out, "run-1") {
		t.Fatalf("text output = %q, missing expected fields", out)
	}
}

func TestLogEmitterJSONMode(t *testing.T) {
	var buf bytes.Buffer
	e := NewLogEmitter(&buf, true)
	e.Emit(Event{RunID: "run-1", Seq: 3, NodeID: 7, Msg: "node_failed", Meta: map[string]any{"error": "boom"}})

	var decoded struct {
		RunID  string         `json:"run_id"`
		Seq    int64          `json:"seq"`
		NodeID int64          `json:"node_id"`
		Msg    string         `json:"msg"`
		Meta   map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v; output was %q", err, buf.String())
	}
	if decoded.RunID != "run-1" || decoded.NodeID != 7 || decoded.Msg != "node_failed" {
		t.Errorf("decoded = %+v, missing expected fields", decoded)
	}
	if decoded.Meta["error"] != "boom" {
		t.Errorf("decoded.Meta[error] = %v, want boom", decoded.Meta["error"])
	}
}
