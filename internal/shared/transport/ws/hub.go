package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"Dominion/modules/kit/logx"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域由 HTTP 中间件统一处理
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub 按房间（world_id）管理连接，广播只投递给同一房间。
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*WsServer]struct{}
	log   logx.Logger
}

func NewHub(l logx.Logger) *Hub {
	if l == nil {
		l = logx.Nop()
	}
	return &Hub{rooms: make(map[string]map[*WsServer]struct{}), log: l}
}

// Serve 升级连接并加入房间，连接关闭后自动退出房间。
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, room string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := NewWsServer(conn, room, h.log)
	h.join(c)
	c.Run(h.leave)
	c.Push(WelcomeMsg, map[string]string{"room": room})
	return nil
}

func (h *Hub) join(c *WsServer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.rooms[c.room]
	if set == nil {
		set = make(map[*WsServer]struct{})
		h.rooms[c.room] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) leave(c *WsServer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.rooms[c.room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, c.room)
		}
	}
}

// Broadcast 把一条消息推给房间内所有连接。
func (h *Hub) Broadcast(room, name string, data any) {
	raw, err := json.Marshal(&RespBody{Name: name, Msg: data})
	if err != nil {
		h.log.Error("hub broadcast marshal", zap.String("room", room), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		c.pushRaw(raw)
	}
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
