package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"time"

	"predman/internal/logger"

	"github.com/gorilla/websocket"
)

// ws_smoke connects to a project's board stream and prints every event until
// interrupted or until -for elapses.
func main() {
	addr := flag.String("addr", "127.0.0.1:8090", "server host:port")
	project := flag.String("project", "", "project id to watch")
	token := flag.String("token", os.Getenv("PREDMAN_TOKEN"), "bearer token (defaults to $PREDMAN_TOKEN)")
	duration := flag.Duration("for", 0, "stop after this long (0 = until interrupted)")
	flag.Parse()

	if *project == "" || *token == "" {
		logger.Fatal("-project and -token are required")
	}

	// use 127.0.0.1 by default to prefer IPv4 (avoid resolving to [::1])
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/v1/ws"}
	q := u.Query()
	q.Set("project_id", *project)
	q.Set("token", *token)
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			logger.Fatal("dial failed", "status", resp.StatusCode, "error", err)
		}
		logger.Fatal("dial failed", "error", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	// keep the server side from timing us out between events
	go func() {
		ticker := time.NewTicker(20 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`))
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, net.ErrClosed) {
				logger.Info("smoke test finished")
				return
			}
			logger.Fatal("read failed", "error", err)
		}
		fmt.Println(string(msg))
	}
}
