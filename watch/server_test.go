package watch

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vktec/afkslime"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
}

func TestServer_ProgressAndResult(t *testing.T) {
	s := NewServer(log.New(io.Discard, "", 0))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	var p afkslime.Progress
	p.Start(100)
	p.Add(40)
	if err := s.Publish(NewProgressMsg(&p)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// Connecting after the publish still delivers the latest state
	conn := dial(t, ts.URL)
	defer conn.Close()

	var prog ProgressMsg
	readMsg(t, conn, &prog)
	if prog.Type != TypeProgress || prog.Done != 40 || prog.Total != 100 {
		t.Fatalf("unexpected progress %+v", prog)
	}

	rep := afkslime.Report{Seed: 12345, Range: 10, Candidates: 100, Best: afkslime.Result{X: 1, Z: 2, Count: 30}}
	if err := s.Publish(NewResultMsg(rep)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	s.Close()

	var res ResultMsg
	readMsg(t, conn, &res)
	if res.Type != TypeResult || res.Report.Best != rep.Best || res.Report.Seed != 12345 {
		t.Fatalf("unexpected result %+v", res)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal closure, got %v", err)
	}
	if !s.Wait(5 * time.Second) {
		t.Fatal("handlers still running after Close")
	}
}

func TestServer_ClosedRejectsClients(t *testing.T) {
	s := NewServer(log.New(io.Discard, "", 0))
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	s.Close()

	conn := dial(t, ts.URL)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away closure, got %v", err)
	}
	if err := s.Publish(ProgressMsg{Type: TypeProgress}); err != nil {
		t.Fatalf("Publish after Close: %v", err)
	}
}
