package gelf

import (
	"encoding/json"
	"net"
	"testing"
	"time"
)

func TestWriteSendsMessage(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer pc.Close()

	w, err := New(pc.LocalAddr().String(), "cessadesk")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer w.Close()

	line := "2026/10/18 09:30:00 Warning: failed to publish submission.created\n"
	n, err := w.Write([]byte(line))
	if err != nil || n != len(line) {
		t.Fatalf("write = %d, %v", n, err)
	}

	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 8192)
	n, _, err = pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(buf[:n], &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg["short_message"] != "Warning: failed to publish submission.created" {
		t.Errorf("short_message = %v", msg["short_message"])
	}
	if msg["level"].(float64) != 4 {
		t.Errorf("level = %v", msg["level"])
	}
	if msg["_service"] != "cessadesk" || msg["version"] != "1.1" {
		t.Errorf("unexpected fields %v", msg)
	}
}

func TestLevel(t *testing.T) {
	cases := map[string]int{
		"PANIC: nil map":               3,
		"Fatal: cannot bind":           3,
		"Warning: degraded":            4,
		"GET /api/v1/submissions 200 ": 6,
	}
	for in, want := range cases {
		if got := Level(in); got != want {
			t.Errorf("Level(%q) = %d, want %d", in, got, want)
		}
	}
}
