package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"predman/internal/domain"
	"predman/internal/logger"

	"github.com/gorilla/websocket"
)

// Watch streams board events of a project to fn until ctx is cancelled or
// the connection drops. Control messages (ready, pong, error) are skipped.
func (c *Client) Watch(ctx context.Context, projectID string, fn func(domain.BoardEvent)) error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/ws"
	q := url.Values{}
	q.Set("project_id", projectID)
	q.Set("token", c.Token)
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return decodeError(resp)
		}
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var ev domain.BoardEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			logger.Warn("board stream: bad message", "error", err)
			continue
		}
		if ev.ProjectID == "" || ev.TaskID == "" {
			continue
		}
		fn(ev)
	}
}
