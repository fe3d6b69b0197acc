package ws

import (
	"encoding/json"
	"sync"
	"time"

	"Dominion/modules/kit/logx"

	"github.com/go-viper/mapstructure/v2"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second
	maxMsgSize  = 4096
	sendBufSize = 256
)

// WsServer 是一条客户端连接：读循环只处理心跳，写循环串行推送房间广播。
type WsServer struct {
	conn      *websocket.Conn
	room      string
	outChan   chan []byte
	done      chan struct{}
	closeOnce sync.Once
	log       logx.Logger
}

func NewWsServer(conn *websocket.Conn, room string, l logx.Logger) *WsServer {
	if l == nil {
		l = logx.Nop()
	}
	return &WsServer{
		conn:    conn,
		room:    room,
		outChan: make(chan []byte, sendBufSize),
		done:    make(chan struct{}),
		log:     l.With(zap.String("room", room)),
	}
}

func (s *WsServer) Addr() string {
	return s.conn.RemoteAddr().String()
}

// Push 非阻塞投递；缓冲满说明客户端跟不上，直接丢弃这一条。
func (s *WsServer) Push(name string, data any) {
	raw, err := json.Marshal(&RespBody{Name: name, Msg: data})
	if err != nil {
		s.log.Error("ws push marshal", zap.Error(err))
		return
	}
	s.pushRaw(raw)
}

func (s *WsServer) pushRaw(raw []byte) {
	select {
	case <-s.done:
	case s.outChan <- raw:
	default:
		s.log.Warn("ws drop msg, buffer full", zap.String("addr", s.Addr()))
	}
}

// Run 启动读写循环，onClose 在连接结束时调用一次。
func (s *WsServer) Run(onClose func(*WsServer)) {
	go s.writeMsgLoop()
	go func() {
		s.readMsgLoop()
		if onClose != nil {
			onClose(s)
		}
	}()
}

func (s *WsServer) readMsgLoop() {
	defer s.Close()
	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("ws unexpected close", zap.Error(err))
			}
			return
		}
		req := ReqBody{}
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}
		if req.Name != HeartbeatMsg {
			continue
		}
		h := &Heartbeat{}
		_ = mapstructure.Decode(req.Msg, h)
		h.STime = time.Now().UnixMilli()
		raw, _ := json.Marshal(&RespBody{Seq: req.Seq, Name: HeartbeatMsg, Msg: h})
		s.pushRaw(raw)
	}
}

func (s *WsServer) writeMsgLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg := <-s.outChan:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.log.Warn("ws write", zap.Error(err))
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *WsServer) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *WsServer) Done() <-chan struct{} {
	return s.done
}
