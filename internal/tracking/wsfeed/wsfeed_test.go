package wsfeed

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Faultbox/cartoonhead/internal/tracking"
)

func TestApply(t *testing.T) {
	b := tracking.NewBridge()

	if err := Apply(b, Message{Names: []string{"jawOpen", "blinkL"}}); err != nil {
		t.Fatal(err)
	}
	if f := b.Snapshot(); len(f.Names) != 2 || f.Seq != 0 {
		t.Errorf("after names: %+v", f)
	}

	matrix := make([]float32, 16)
	for i := range matrix {
		matrix[i] = float32(i)
	}
	if err := Apply(b, Message{Weights: []float32{0.5, 0.25}, Matrix: matrix}); err != nil {
		t.Fatal(err)
	}
	f := b.Snapshot()
	if f.Seq != 1 || f.Weights[0] != 0.5 || f.Matrix[13] != 13 {
		t.Errorf("after values: %+v", f)
	}

	// Weights alone keep the pose.
	if err := Apply(b, Message{Weights: []float32{1, 1}}); err != nil {
		t.Fatal(err)
	}
	if f := b.Snapshot(); f.Matrix[13] != 13 || f.Weights[1] != 1 {
		t.Errorf("weights only: %+v", f)
	}

	mesh := "head"
	if err := Apply(b, Message{Mesh: &mesh}); err != nil {
		t.Fatal(err)
	}
	if f := b.Snapshot(); f.Mesh != "head" || f.Seq != 2 {
		t.Errorf("mesh only: %+v", f)
	}
}

func TestApplyBadMatrix(t *testing.T) {
	b := tracking.NewBridge()
	if err := Apply(b, Message{Names: []string{"a"}, Matrix: []float32{1, 2}}); err == nil {
		t.Fatal("Apply() accepted a short matrix")
	}
	if f := b.Snapshot(); f.Names != nil {
		t.Error("rejected message was partially applied")
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + Path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitSeq(t *testing.T, b *tracking.Bridge, seq uint64) tracking.Frame {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f := b.Snapshot(); f.Seq >= seq {
			return f
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("bridge did not reach seq %d", seq)
	return tracking.Frame{}
}

func TestServerFeedsBridge(t *testing.T) {
	b := tracking.NewBridge()
	srv := httptest.NewServer(New(b, time.Second).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	if err := conn.WriteJSON(Message{Names: []string{"jawOpen"}}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(Message{Weights: []float32{0.75}}); err != nil {
		t.Fatal(err)
	}

	f := waitSeq(t, b, 1)
	if len(f.Names) != 1 || f.Names[0] != "jawOpen" || f.Weights[0] != 0.75 {
		t.Errorf("frame = %+v", f)
	}
	if f.Matrix != tracking.IdentityMatrix {
		t.Errorf("matrix = %v, want identity", f.Matrix)
	}
}

func TestServerReportsBadMessage(t *testing.T) {
	b := tracking.NewBridge()
	srv := httptest.NewServer(New(b, time.Second).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	tests := []struct {
		msg  string
		want string
	}{
		{`{"matrix":[1,2,3]}`, "16"},
		{`{not json`, "decoding message"},
		{`{"weights":"high"}`, "decoding message"},
	}
	for _, tt := range tests {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.msg)); err != nil {
			t.Fatal(err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("%s: reading error reply: %v", tt.msg, err)
		}
		var reply struct{ Error string }
		if err := json.Unmarshal(data, &reply); err != nil || !strings.Contains(reply.Error, tt.want) {
			t.Errorf("%s: reply = %s (%v), want error containing %q", tt.msg, data, err, tt.want)
		}
	}
	if got := b.Snapshot().Seq; got != 0 {
		t.Errorf("seq after rejected messages = %d, want 0", got)
	}

	// The connection stays usable after errors.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"weights":[0.5]}`)); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for b.Snapshot().Seq == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := b.Snapshot().Seq; got != 1 {
		t.Errorf("seq after valid message = %d, want 1", got)
	}
}

func TestHandle(t *testing.T) {
	b := tracking.NewBridge()
	s := New(b, time.Second)
	if err := s.handle([]byte(`{bad`)); err == nil {
		t.Error("handle() accepted malformed JSON")
	}
	if err := s.handle([]byte(`{"matrix":[1]}`)); err == nil {
		t.Error("handle() accepted a short matrix")
	}
	if err := s.handle([]byte(`{"names":["jawOpen"],"weights":[1]}`)); err != nil {
		t.Errorf("handle() error: %v", err)
	}
	if f := b.Snapshot(); f.Len() != 1 || f.Seq != 1 {
		t.Errorf("frame = %+v, want one applied pair", f)
	}
}
