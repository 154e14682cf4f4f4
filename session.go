package main

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Inbound messages are cheap to produce and expensive to apply, so each
// connection gets a token bucket; anything over the limit is dropped.
const (
	messagesPerSecond = 20
	messageBurst      = 40
)

type Client struct {
	conn    *websocket.Conn
	send    chan any
	userID  int
	limiter *rate.Limiter
	closed  bool
}

// shutdown closes the outbound channel once. Called under the registry
// mutex, either on disconnect or when the client stops draining its buffer.
func (c *Client) shutdown() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump(reg *Registry) {
	defer func() {
		reg.disconnect(c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if !c.limiter.Allow() {
			continue
		}

		reg.dispatch(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (r *Registry) dispatch(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "setUsername":
		r.handleSetUsername(c, msg.Username)
	case "quickQueue":
		r.handleQuickQueue(c)
	case "createRoom":
		r.handleCreateRoom(c, msg.Config)
	case "joinRoom":
		r.handleJoinRoom(c, msg.RoomCode)
	case "leaveRoom":
		r.handleLeaveRoom(c)
	case "updateGameSettings":
		r.handleUpdateGameSettings(c, msg.Settings)
	case "startGame":
		r.handleStartGame(c)
	case "submitAnswer":
		r.handleSubmitAnswer(c, msg.CoasterID)
	case "endGame":
		r.handleEndGame(c)
	case "chatMessage":
		r.handleChatMessage(c, msg.Message)
	default:
		// ignore unknown types
	}
}

func serveWS(cfg *Config, reg *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "GAMES: upgrade error: %v", err)
			return
		}

		client := &Client{
			conn:    conn,
			send:    make(chan any, 16),
			limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), messageBurst),
		}

		go client.writePump()
		reg.connect(client)
		client.readPump(reg)
	}
}

// roomExists is the read used by the QR handler; QR codes are only issued
// for live rooms.
func (r *Registry) roomExists(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.rooms[code]
	return ok
}

// qrHandler renders a PNG QR code for joining a room, pointing at the web
// client with the room code preloaded.
func qrHandler(cfg *Config, reg *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("code")
		if code == "" || !reg.roomExists(code) {
			http.Error(w, "unknown room code", http.StatusNotFound)
			return
		}

		base := cfg.clientURL
		if base == "" {
			// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}
			if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
				scheme = proto
			}
			base = scheme + "://" + r.Host + cfg.prefix
		}

		url := strings.TrimSuffix(base, "/") + "/?room=" + code

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}
