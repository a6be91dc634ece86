package ws

import (
	"encoding/json"
	"sync"
	"time"

	"predman/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

type Client struct {
	UserID    string
	ProjectID string
	Conn      *websocket.Conn
	Send      chan []byte

	Hub  *Hub
	Done chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func NewClient(userID, projectID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID:    userID,
		ProjectID: projectID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		Hub:       hub,
		Done:      make(chan struct{}),
		closed:    make(chan struct{}),
	}
}

// Run joins the project room and pumps messages until the peer goes away.
func (c *Client) Run() {
	c.Hub.Join(c)
	go c.writePump()

	// joined before ready is sent, so a client that saw ready gets every later event
	ready, _ := json.Marshal(ReadyPayload{Type: MsgReady, ProjectID: c.ProjectID})
	c.queue(ready)

	c.readPump()
}

// queue hands msg to the writer without blocking; false means the buffer is full.
func (c *Client) queue(msg []byte) bool {
	select {
	case <-c.closed:
		return true
	default:
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.Conn.Close()
	})
}

//read
func (c *Client) readPump() {
	defer func() {
		c.Hub.OnDisconnect(c)
		c.close()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("malformed message")
			continue
		}
		switch msg.Type {
		case MsgPing:
			c.queue([]byte(`{"type":"pong"}`))
		default:
			c.sendError("unknown message type")
		}
	}
}

func (c *Client) sendError(text string) {
	b, _ := json.Marshal(ErrorPayload{Type: MsgError, Message: text})
	c.queue(b)
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write failed", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
