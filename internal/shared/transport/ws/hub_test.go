package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialRoom(t *testing.T, h *Hub, room string) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.Serve(w, r, room); err != nil {
			t.Errorf("升级失败: %v", err)
		}
	}))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("拨号失败: %v", err)
	}
	return conn, func() { _ = conn.Close(); srv.Close() }
}

func readBody(t *testing.T, conn *websocket.Conn) RespBody {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	var body RespBody
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	return body
}

func TestHub_只广播给同房间(t *testing.T) {
	h := NewHub(nil)
	a, closeA := dialRoom(t, h, "w-1")
	defer closeA()
	b, closeB := dialRoom(t, h, "w-2")
	defer closeB()

	if got := readBody(t, a); got.Name != WelcomeMsg {
		t.Fatalf("期望先收到欢迎消息, got=%q", got.Name)
	}
	if got := readBody(t, b); got.Name != WelcomeMsg {
		t.Fatalf("期望先收到欢迎消息, got=%q", got.Name)
	}

	h.Broadcast("w-1", "tile_ownership_changed", map[string]int{"x": 3})
	if got := readBody(t, a); got.Name != "tile_ownership_changed" {
		t.Fatalf("期望 w-1 收到广播, got=%q", got.Name)
	}
	_ = b.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := b.ReadMessage(); err == nil {
		t.Fatalf("期望 w-2 收不到 w-1 的广播")
	}
}

func TestHub_心跳回写服务端时间(t *testing.T) {
	h := NewHub(nil)
	conn, closeFn := dialRoom(t, h, "w-1")
	defer closeFn()
	_ = readBody(t, conn)

	req, _ := json.Marshal(ReqBody{Seq: 7, Name: HeartbeatMsg, Msg: map[string]int64{"ctime": 1}})
	if err := conn.WriteMessage(websocket.TextMessage, req); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	got := readBody(t, conn)
	if got.Name != HeartbeatMsg || got.Seq != 7 {
		t.Fatalf("期望心跳回包 seq=7, got=%+v", got)
	}
	hb, _ := got.Msg.(map[string]any)
	if hb["stime"] == nil || hb["stime"].(float64) <= 0 {
		t.Fatalf("期望 stime 被填充, got=%v", got.Msg)
	}
}
