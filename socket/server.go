package socket

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/Hemdan-MK/Code-Battle-sub000/models"
	"github.com/Hemdan-MK/Code-Battle-sub000/services"

	gosocketio "github.com/erock530/gosf-socketio"
)

// channelConn adapts a Socket.IO channel to the services.Connection
// interface the registries push through.
type channelConn struct {
	ch *gosocketio.Channel
}

func (c channelConn) Id() string { return c.ch.Id() }

func (c channelConn) Join(room string) error { return c.ch.Join(room) }

func (c channelConn) Leave(room string) error { return c.ch.Leave(room) }

func (c channelConn) Emit(event string, payload interface{}) error {
	return c.ch.Emit(event, payload)
}

func (c channelConn) Close() { c.ch.Close() }

// Broadcaster adapts the Socket.IO server's room fan-out to the
// services.Broadcaster interface.
type Broadcaster struct {
	IO *gosocketio.Server
}

// BroadcastTo fans an event out to every connection in a room.
func (b Broadcaster) BroadcastTo(room, event string, payload interface{}) {
	b.IO.BroadcastTo(room, event, payload)
}

// NewIOServer initializes the underlying Socket.IO server.
func NewIOServer() *gosocketio.Server {
	return gosocketio.NewServer(nil)
}

// Server owns the per-connection session map and routes every inbound
// request against the shared registries.
type Server struct {
	IO       *gosocketio.Server
	Auth     *services.AuthService
	Presence *services.PresenceService
	Teams    *services.TeamService
	Friends  *services.FriendService

	mu       sync.Mutex
	sessions map[string]models.Identity // connection id -> verified identity
}

// NewServer wires the coordinator onto an initialized Socket.IO server.
func NewServer(io *gosocketio.Server, auth *services.AuthService, presence *services.PresenceService, teams *services.TeamService, friends *services.FriendService) *Server {
	return &Server{
		IO:       io,
		Auth:     auth,
		Presence: presence,
		Teams:    teams,
		Friends:  friends,
		sessions: make(map[string]models.Identity),
	}
}

// RegisterHandlers attaches the connection lifecycle and the single request
// entry point.
func (s *Server) RegisterHandlers() {
	s.IO.On(gosocketio.OnConnection, func(c *gosocketio.Channel) {
		s.onConnect(c)
	})
	s.IO.On(gosocketio.OnDisconnection, func(c *gosocketio.Channel) {
		s.onDisconnect(c)
	})
	s.IO.On("request", func(c *gosocketio.Channel, env Envelope) {
		s.handle(c, env)
	})
}

// onConnect validates the bearer credential carried in the handshake. The
// connection is closed before any request handler can run for it if the
// credential is missing, invalid, or the user no longer exists. Presence
// registration stays lazy: it happens on the first register_presence
// request, not here, since admission can race a parallel disconnect
// cleanup for the same user.
func (s *Server) onConnect(c *gosocketio.Channel) {
	token := ""
	if header := c.RequestHeader(); header != nil {
		token = header.Get("Authorization")
	}

	identity, err := s.Auth.VerifyBearer(context.Background(), token)
	if err != nil {
		log.Printf("❌ Connection %s refused: %v", c.Id(), err)
		_ = c.Emit(models.EventAuthError, models.ErrorEvent{Code: models.CodeAuthError, Message: "authentication failed"})
		c.Close()
		return
	}

	s.mu.Lock()
	s.sessions[c.Id()] = *identity
	s.mu.Unlock()
	log.Printf("✅ Socket connected: %s (%s)", c.Id(), identity.UserID)
}

// onDisconnect runs the reconciler exactly once per connection loss.
func (s *Server) onDisconnect(c *gosocketio.Channel) {
	s.mu.Lock()
	delete(s.sessions, c.Id())
	s.mu.Unlock()

	s.reconcile(c.Id())
	log.Printf("❌ Socket disconnected: %s", c.Id())
}

// reconcile removes the connection's presence entry, unwinds its team
// membership with the normal leave rules, and pushes the offline status to
// present friends. Idempotent: a connection that never registered presence,
// or that already logged out explicitly, is a no-op here.
func (s *Server) reconcile(connID string) {
	userID, ok := s.Presence.Remove(connID)
	if !ok {
		return
	}

	if err := s.Teams.LeaveTeam(userID); err != nil && !errors.Is(err, services.ErrNotInTeam) {
		log.Printf("⚠️ Failed to unwind team membership for %s: %v", userID, err)
	}

	s.Presence.NotifyOffline(context.Background(), userID)
}

func (s *Server) sessionOf(connID string) (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.sessions[connID]
	return identity, ok
}
