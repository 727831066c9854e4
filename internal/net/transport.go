// Package net shares a canvas between LocalPaint instances. One instance
// hosts, the others join over a websocket and exchange paint operations.
package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"LocalPaint/internal/logger"
	"LocalPaint/internal/state"
)

const (
	WebSocketPath = "/ws"

	writeWait = 10 * time.Second
	component = "share"
)

// maxMessageSize bounds a single incoming op. A full canvas sync is the
// largest message.
var maxMessageSize int64 = 64 << 20

// peer is one websocket connection. Writes are serialised because
// gorilla/websocket allows a single concurrent writer.
type peer struct {
	ws   *websocket.Conn
	addr string
	mu   sync.Mutex
}

func (p *peer) send(op state.Op) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return p.ws.WriteJSON(op)
}

func (p *peer) close() error {
	p.mu.Lock()
	_ = p.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	p.mu.Unlock()
	return p.ws.Close()
}

// Hub is run by the HOST. It accepts peers, relays every op a peer sends to
// all the others and hands it to OnOp.
type Hub struct {
	log      logger.Logger
	upgrader websocket.Upgrader

	peers map[*peer]struct{}
	mu    sync.RWMutex

	// OnOp receives ops sent by peers. It runs on the peer's read goroutine.
	OnOp func(op state.Op)
	// Snapshot, when set, produces the first op a new peer receives.
	Snapshot func() (state.Op, bool)

	server *http.Server
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		peers: make(map[*peer]struct{}),
	}
}

// Start listens on addr (":8899") and serves the websocket endpoint in the
// background. The returned address is the one actually bound.
func (h *Hub) Start(addr string) (net.Addr, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start share server on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle(WebSocketPath, h)
	h.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := h.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error(component, err, map[string]interface{}{"addr": addr})
		}
	}()
	h.log.Info(component, "share server listening", map[string]interface{}{"addr": l.Addr().String()})
	return l.Addr(), nil
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warning(component, "websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	ws.SetReadLimit(maxMessageSize)
	p := &peer{ws: ws, addr: r.RemoteAddr}

	var first *state.Op
	if h.Snapshot != nil {
		if op, ok := h.Snapshot(); ok {
			first = &op
		}
	}

	// Holding the peer's write lock keeps relayed ops queued behind the
	// snapshot.
	p.mu.Lock()
	h.add(p)
	if first != nil {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(first); err != nil {
			h.log.Warning(component, "snapshot send failed", map[string]interface{}{"peer": p.addr, "error": err.Error()})
		}
	}
	p.mu.Unlock()
	defer h.remove(p)

	for {
		var op state.Op
		if err := ws.ReadJSON(&op); err != nil {
			h.log.Info(component, "peer disconnected", map[string]interface{}{"peer": p.addr, "reason": err.Error()})
			return
		}
		h.log.Debug(component, "received op", map[string]interface{}{"peer": p.addr, "type": string(op.Type)})
		if h.OnOp != nil {
			h.OnOp(op)
		}
		h.broadcast(op, p)
	}
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	h.peers[p] = struct{}{}
	h.mu.Unlock()
	h.log.Info(component, "peer connected", map[string]interface{}{"peer": p.addr})
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	h.mu.Unlock()
	if ok {
		p.ws.Close()
	}
}

func (h *Hub) broadcast(op state.Op, exclude *peer) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		if p == exclude {
			continue
		}
		if err := p.send(op); err != nil {
			h.log.Warning(component, "send failed", map[string]interface{}{"peer": p.addr, "error": err.Error()})
		}
	}
}

// Publish sends an op drawn on the host to every peer.
func (h *Hub) Publish(op state.Op) error {
	h.broadcast(op, nil)
	return nil
}

func (h *Hub) peerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close stops the server and drops every peer.
func (h *Hub) Close(ctx context.Context) error {
	var err error
	if h.server != nil {
		err = h.server.Shutdown(ctx)
	}
	h.mu.Lock()
	peers := h.peers
	h.peers = make(map[*peer]struct{})
	h.mu.Unlock()
	for p := range peers {
		p.close()
	}
	return err
}

// Client is run by a peer that joined a host.
type Client struct {
	p    *peer
	log  logger.Logger
	done chan struct{}
	err  error
}

// Dial connects to a host's websocket URL. onOp is called from the client's
// read goroutine for every op the host relays.
func Dial(ctx context.Context, url string, onOp func(state.Op), log logger.Logger) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", url, err)
	}
	ws.SetReadLimit(maxMessageSize)
	c := &Client{
		p:    &peer{ws: ws, addr: url},
		log:  log,
		done: make(chan struct{}),
	}
	go c.readLoop(onOp)
	log.Info(component, "connected to host", map[string]interface{}{"url": url, "local": ws.LocalAddr().String()})
	return c, nil
}

func (c *Client) readLoop(onOp func(state.Op)) {
	defer close(c.done)
	for {
		var op state.Op
		if err := c.p.ws.ReadJSON(&op); err != nil {
			c.err = err
			c.log.Info(component, "disconnected from host", map[string]interface{}{"reason": err.Error()})
			return
		}
		if onOp != nil {
			onOp(op)
		}
	}
}

// Publish sends a local op to the host.
func (c *Client) Publish(op state.Op) error {
	if err := c.p.send(op); err != nil {
		return fmt.Errorf("send %s: %w", op.Type, err)
	}
	return nil
}

// Done is closed once the connection to the host is gone.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err is the reason the connection ended. Only valid after Done is closed.
func (c *Client) Err() error { return c.err }

func (c *Client) Close() error {
	return c.p.close()
}
