package scroll

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"DENAC/internal/config"
	"DENAC/internal/frames"
	"DENAC/internal/overlay"
	"DENAC/internal/services"
)

func ptr(v float64) *float64 { return &v }

func newTestSession(t *testing.T) (*Session, *[]Update) {
	t.Helper()
	mapper, err := frames.NewMapper(120)
	if err != nil {
		t.Fatal(err)
	}
	var sent []Update
	s := NewSession("test", mapper, overlay.NewSequencer(overlay.DefaultTimeline()), 60, func(u Update) {
		sent = append(sent, u)
	})
	t.Cleanup(s.Close)
	return s, &sent
}

func TestSessionPrime(t *testing.T) {
	s, sent := newTestSession(t)
	s.Prime()
	if !s.Tick() {
		t.Fatal("primed session did not send")
	}
	u := (*sent)[0]
	if u.Frame != 1 || u.Progress != 0 || len(u.Panels) != 7 {
		t.Fatalf("unexpected first update %+v", u)
	}
	if u.Panels[0].ID != "intro" || u.Panels[0].Opacity != 1 {
		t.Errorf("intro should be visible at 0: %+v", u.Panels[0])
	}
}

func TestSessionCoalesces(t *testing.T) {
	s, sent := newTestSession(t)
	if err := s.Apply(Message{Offset: ptr(500), Start: ptr(0), End: ptr(1000)}); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(Message{Offset: ptr(600)}); err != nil {
		t.Fatal(err)
	}
	if !s.Tick() {
		t.Fatal("expected one update")
	}
	if s.Tick() {
		t.Fatal("second tick without new input should not send")
	}
	if len(*sent) != 1 {
		t.Fatalf("sent %d updates, want 1", len(*sent))
	}
	u := (*sent)[0]
	if u.Progress != 0.6 || u.Frame != 72 {
		t.Errorf("update = frame %d progress %v, want 72 and 0.6", u.Frame, u.Progress)
	}
}

func TestSessionProgressAndEnds(t *testing.T) {
	s, sent := newTestSession(t)
	if err := s.Apply(Message{Progress: ptr(1)}); err != nil {
		t.Fatal(err)
	}
	s.Tick()
	if err := s.Apply(Message{Progress: ptr(3)}); err != nil {
		t.Fatal(err)
	}
	if s.Tick() {
		t.Error("overscroll past 1 should not change anything")
	}
	if got := (*sent)[0]; got.Frame != 120 || got.Progress != 1 {
		t.Errorf("end update = %+v", got)
	}
}

func TestSessionRejectsEmpty(t *testing.T) {
	s, _ := newTestSession(t)
	if err := s.Apply(Message{}); err == nil {
		t.Error("expected error for empty message")
	}
	if err := s.Apply(Message{Start: ptr(0), End: ptr(10)}); err != nil {
		t.Errorf("region-only message: %v", err)
	}
}

func TestSessionRegionResize(t *testing.T) {
	s, sent := newTestSession(t)
	if err := s.Apply(Message{Offset: ptr(500), Start: ptr(0), End: ptr(1000)}); err != nil {
		t.Fatal(err)
	}
	s.Tick()
	if err := s.Apply(Message{Start: ptr(0), End: ptr(2000)}); err != nil {
		t.Fatal(err)
	}
	if !s.Tick() {
		t.Fatal("resize should re-send the re-normalized position")
	}
	if u := (*sent)[1]; u.Progress != 0.25 || u.Frame != 30 {
		t.Errorf("after resize = frame %d progress %v, want 30 and 0.25", u.Frame, u.Progress)
	}

	// A progress message replaces the offset, so a later resize keeps it.
	if err := s.Apply(Message{Progress: ptr(0.8)}); err != nil {
		t.Fatal(err)
	}
	s.Tick()
	if err := s.Apply(Message{Start: ptr(0), End: ptr(4000)}); err != nil {
		t.Fatal(err)
	}
	if s.Tick() {
		t.Errorf("resize after a progress message changed progress: %+v", (*sent)[len(*sent)-1])
	}
}

func TestHandler(t *testing.T) {
	cfg := config.Defaults()
	cfg.FramesDir = t.TempDir()
	svc, err := services.New(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	ts := httptest.NewServer(Handler(svc, slog.Default()))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var first Update
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		t.Fatalf("read: %v", err)
	}
	if first.Frame != 1 {
		t.Fatalf("first update frame = %d, want 1", first.Frame)
	}

	if err := wsjson.Write(ctx, conn, Message{Progress: ptr(1)}); err != nil {
		t.Fatalf("write: %v", err)
	}
	for {
		var u Update
		if err := wsjson.Read(ctx, conn, &u); err != nil {
			t.Fatalf("read: %v", err)
		}
		if u.Frame == 120 {
			if cta := u.Panels[len(u.Panels)-1]; cta.ID != "cta" || cta.Opacity != 1 {
				t.Errorf("cta at end = %+v", cta)
			}
			return
		}
	}
}
