// Werewolf
//
// Players open the page, pick a name, and either create a room or join one
// with its short code. Once at least five players are in, any of them can
// start the game; the server deals two wolves, a detective, a doctor and
// villagers for everyone else, and tells each player only their own role.
//
// Features:
// - One websocket per browser tab: /path/ws
// - Room codes are short, uppercase and case-insensitive on entry
// - Players identified by a client-side id, falling back to a cookie
// - Errors are reported only to the player who caused them
// - Rooms disappear when their last player disconnects
// - QR code for each room's join link, backed by go-qrcode

package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/werewolf/games/werewolf"
)

const (
	playerCookieName = "werewolf_id"
	sendBuffer       = 16
)

type Client struct {
	id   werewolf.ConnID
	conn *websocket.Conn
	send chan any
}

// clientSet holds every live connection and delivers hub messages to them.
type clientSet struct {
	mu      sync.RWMutex
	clients map[werewolf.ConnID]*Client
}

func newClientSet() *clientSet {
	return &clientSet{
		clients: make(map[werewolf.ConnID]*Client),
	}
}

func (s *clientSet) add(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.id] = c
}

func (s *clientSet) remove(id werewolf.ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clients[id]; ok {
		delete(s.clients, id)
		close(c.send)
	}
}

// Send never blocks; messages to a slow or departed client are dropped.
func (s *clientSet) Send(id werewolf.ConnID, msg any) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		log.Warn().Str("conn", string(id)).Msg("send buffer full, dropping message")
	}
}

func newUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

func playerIDFromCookie(r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil {
		return c.Value
	}
	return ""
}

func serveWS(cfg *Config, hub *werewolf.Hub, clients *clientSet) httprouter.Handle {
	upgrader := newUpgrader()

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Str("client", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		conn.SetReadLimit(cfg.maxMessageSize)

		client := &Client{
			id:   werewolf.ConnID(uuid.NewString()),
			conn: conn,
			send: make(chan any, sendBuffer),
		}
		clients.add(client)

		log.Debug().Str("conn", string(client.id)).Str("client", realIP(r)).Msg("player connected")

		go client.writePump()
		client.readPump(hub, clients, playerIDFromCookie(r))
	}
}

func (c *Client) readPump(hub *werewolf.Hub, clients *clientSet, cookieID string) {
	defer func() {
		hub.Disconnect(c.id)
		clients.remove(c.id)
		_ = c.conn.Close()

		log.Debug().Str("conn", string(c.id)).Msg("player disconnected")
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Debug().Err(err).Str("conn", string(c.id)).Msg("unexpected close")
			}
			return
		}

		var msg werewolf.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			clients.Send(c.id, werewolf.ErrorMessage{
				Type:    werewolf.TypeError,
				Kind:    werewolf.KindInvalidInput,
				Message: "Malformed message.",
			})
			continue
		}

		if msg.PlayerID == "" {
			msg.PlayerID = cookieID
		}

		if !hub.Submit(c.id, msg) {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

// serveQR renders a PNG QR code linking to the join page for a live room.
func serveQR(cfg *Config, path string, registry *werewolf.Registry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := registry.Lookup(ps.ByName("code"))
		if !ok {
			http.Error(w, "no such room", http.StatusNotFound)
			return
		}

		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		link := url.URL{
			Scheme:   scheme,
			Host:     r.Host,
			Path:     cfg.prefix + path,
			RawQuery: url.Values{"code": {room.Code}}.Encode(),
		}

		const qrSize = 320
		png, err := qrcode.Encode(link.String(), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

//go:embed werewolf/index.html
var indexHTML string

//go:embed werewolf/app.css
var werewolfCSS []byte

//go:embed werewolf/app.js
var werewolfJS []byte

func serveIndex(cfg *Config, errs chan<- error) httprouter.Handle {
	page := []byte(strings.ReplaceAll(indexHTML, "{{prefix}}", cfg.prefix))

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		if _, err := w.Write(page); err != nil {
			errs <- err
		}
	}
}

func serveAsset(cfg *Config, contentType string, data []byte, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		if _, err := w.Write(data); err != nil {
			errs <- err
		}
	}
}

// registerWerewolfGame sets up routes so that:
//   - $path             → HTML client
//   - $path/ws          → WebSocket carrying the room protocol
//   - $path/qr/:code    → PNG QR code for a room's join link
//
// The hub runs until ctx is cancelled.
func registerWerewolfGame(ctx context.Context, cfg *Config, path string, mux *httprouter.Router, errs chan<- error) {
	clients := newClientSet()

	registry := werewolf.NewRegistry(
		werewolf.WithCodeGenerator(werewolf.NewCodeGenerator(cfg.codeLength)),
		werewolf.WithLogger(log.Logger),
	)

	hub := werewolf.NewHub(registry, clients, log.Logger)
	go hub.Run(ctx)

	mux.GET(cfg.prefix+path, serveIndex(cfg, errs))

	mux.GET(cfg.prefix+"/assets/werewolf/app.css", serveAsset(cfg, "text/css; charset=utf-8", werewolfCSS, errs))
	mux.GET(cfg.prefix+"/assets/werewolf/app.js", serveAsset(cfg, "text/javascript; charset=utf-8", werewolfJS, errs))

	mux.GET(cfg.prefix+path+"/ws", serveWS(cfg, hub, clients))

	mux.GET(cfg.prefix+path+"/qr/:code", serveQR(cfg, path, registry, errs))
}
