package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/net/websocket"
)

const wsOrigin = "http://localhost/"

// DialWebSocket connects to a language server exposed over WebSocket at url
// (ws://host:port/path). Each WebSocket message carries a chunk of the
// framed byte stream.
func DialWebSocket(url string) (Transport, error) {
	ws, err := websocket.Dial(url, "", wsOrigin)
	if err != nil {
		return nil, fmt.Errorf("dial websocket %s: %w", url, err)
	}
	return &wsTransport{conn: ws}, nil
}

// ListenWebSocket starts an HTTP server with WebSocket upgrade on the given
// address and returns the first WebSocket connection as a transport.
func ListenWebSocket(addr string) (Transport, error) {
	connCh := make(chan *websocket.Conn, 1)
	done := make(chan struct{})

	var accepted atomic.Bool

	handler := websocket.Handler(func(ws *websocket.Conn) {
		// Only the first connection is served.
		if accepted.Swap(true) {
			return
		}
		connCh <- ws
		// Returning from the handler closes ws.
		<-done
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Handler: handler}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("websocket server error", "addr", addr, "error", err)
		}
	}()

	ws := <-connCh
	return &wsTransport{conn: ws, srv: srv, done: done}, nil
}

type wsTransport struct {
	conn *websocket.Conn
	srv  *http.Server
	done chan struct{}

	// pending holds the unread tail of the last received message.
	pending []byte

	closeOnce sync.Once
}

func (w *wsTransport) Read(p []byte) (int, error) {
	if len(w.pending) == 0 {
		var msg []byte
		if err := websocket.Message.Receive(w.conn, &msg); err != nil {
			return 0, err
		}
		w.pending = msg
	}
	n := copy(p, w.pending)
	w.pending = w.pending[n:]
	return n, nil
}

func (w *wsTransport) Write(p []byte) (int, error) {
	if err := websocket.Message.Send(w.conn, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsTransport) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.conn.Close()
		if w.done != nil {
			close(w.done)
		}
		if w.srv != nil {
			w.srv.Close()
		}
	})
	return err
}
