package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"plemiona/modules/kit/logx"
)

// Envelope is the wire shape of every push: a message name plus a JSON
// payload.
type Envelope struct {
	Name string `json:"name"`
	Msg  any    `json:"msg"`
}

const (
	outBufferSize = 256
	writeTimeout  = 10 * time.Second
)

// Conn wraps one websocket connection with a buffered write loop so a slow
// client never blocks the simulation.
type Conn struct {
	conn      *websocket.Conn
	outChan   chan *Envelope
	done      chan struct{}
	closeOnce sync.Once
	log       logx.Logger
}

func newConn(wsConn *websocket.Conn, log logx.Logger) *Conn {
	return &Conn{
		conn:    wsConn,
		outChan: make(chan *Envelope, outBufferSize),
		done:    make(chan struct{}),
		log:     log,
	}
}

// push enqueues without blocking; a full buffer drops the message, which
// the at-most-once notification contract allows.
func (c *Conn) push(e *Envelope) {
	select {
	case c.outChan <- e:
	case <-c.done:
	default:
		c.log.Warn("ws push dropped, buffer full", zap.String("name", e.Name))
	}
}

func (c *Conn) run(onClose func()) {
	go c.writeLoop()
	go c.readLoop(onClose)
}

func (c *Conn) writeLoop() {
	defer c.Close()
	for {
		select {
		case e := <-c.outChan:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(e); err != nil {
				c.log.Debug("ws write failed", zap.Error(err))
				return
			}
		case <-c.done:
			return
		}
	}
}

// readLoop only watches for the client going away; commands arrive over
// HTTP, not the socket.
func (c *Conn) readLoop(onClose func()) {
	defer func() {
		c.Close()
		if onClose != nil {
			onClose()
		}
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
