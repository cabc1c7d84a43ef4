package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Hemdan-MK/Code-Battle-sub000/models"
)

// In-memory stand-ins for the DynamoDB-backed stores and the socket layer.

type fakeEvent struct {
	Name    string
	Payload interface{}
}

type fakeConn struct {
	id string

	mu     sync.Mutex
	events []fakeEvent
	rooms  map[string]bool
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, rooms: make(map[string]bool)}
}

func (c *fakeConn) Id() string { return c.id }

func (c *fakeConn) Join(room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room] = true
	return nil
}

func (c *fakeConn) Leave(room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, room)
	return nil
}

func (c *fakeConn) Emit(event string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, fakeEvent{Name: event, Payload: payload})
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) inRoom(room string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms[room]
}

func (c *fakeConn) eventsNamed(name string) []fakeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []fakeEvent
	for _, ev := range c.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

type statusCall struct {
	UserID   string
	Status   string
	Activity string
}

type fakeUserStore struct {
	users       map[string]*models.UserRecord
	statusCalls []statusCall
}

func newFakeUserStore(users ...models.UserRecord) *fakeUserStore {
	store := &fakeUserStore{users: make(map[string]*models.UserRecord)}
	for i := range users {
		u := users[i]
		store.users[u.UserID] = &u
	}
	return store
}

func (s *fakeUserStore) GetUser(_ context.Context, userID string) (*models.UserRecord, error) {
	record, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	clone := *record
	return &clone, nil
}

func (s *fakeUserStore) FindByHandle(_ context.Context, username, tag string) (string, error) {
	for _, record := range s.users {
		if record.Username == username && record.Tag == tag {
			return record.UserID, nil
		}
	}
	return "", fmt.Errorf("handle %s#%s: %w", username, tag, ErrNotFound)
}

func (s *fakeUserStore) SetStatus(_ context.Context, userID, status, activity string, lastSeen time.Time) error {
	if record, ok := s.users[userID]; ok {
		record.Status = status
		record.Activity = activity
		record.LastSeen = lastSeen.UTC().Format(time.RFC3339)
	}
	s.statusCalls = append(s.statusCalls, statusCall{UserID: userID, Status: status, Activity: activity})
	return nil
}

func (s *fakeUserStore) lastStatus(userID string) (statusCall, bool) {
	for i := len(s.statusCalls) - 1; i >= 0; i-- {
		if s.statusCalls[i].UserID == userID {
			return s.statusCalls[i], true
		}
	}
	return statusCall{}, false
}

type fakeGraph struct {
	edges   map[string]map[string]bool // userId -> friendId set
	pending map[string]map[string]bool // inbox owner -> requester set
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		edges:   make(map[string]map[string]bool),
		pending: make(map[string]map[string]bool),
	}
}

func (g *fakeGraph) GetFriends(_ context.Context, userID string) ([]string, error) {
	var out []string
	for id := range g.edges[userID] {
		out = append(out, id)
	}
	return out, nil
}

func (g *fakeGraph) GetPendingInbox(_ context.Context, userID string) ([]string, error) {
	var out []string
	for id := range g.pending[userID] {
		out = append(out, id)
	}
	return out, nil
}

func (g *fakeGraph) HasEdge(_ context.Context, userID, friendID string) (bool, error) {
	return g.edges[userID][friendID], nil
}

func (g *fakeGraph) HasPending(_ context.Context, userID, requesterID string) (bool, error) {
	return g.pending[userID][requesterID], nil
}

// AddEdge seeds a symmetric friendship directly; tests use it to arrange
// existing graphs.
func (g *fakeGraph) AddEdge(_ context.Context, userID, friendID string) error {
	g.link(userID, friendID)
	g.link(friendID, userID)
	return nil
}

func (g *fakeGraph) PromotePending(_ context.Context, userID, requesterID string) error {
	g.link(userID, requesterID)
	g.link(requesterID, userID)
	delete(g.pending[userID], requesterID)
	return nil
}

func (g *fakeGraph) RemoveEdge(_ context.Context, userID, friendID string) error {
	delete(g.edges[userID], friendID)
	delete(g.edges[friendID], userID)
	return nil
}

func (g *fakeGraph) AddPending(_ context.Context, userID, requesterID string) error {
	if g.pending[userID] == nil {
		g.pending[userID] = make(map[string]bool)
	}
	g.pending[userID][requesterID] = true
	return nil
}

func (g *fakeGraph) RemovePending(_ context.Context, userID, requesterID string) error {
	delete(g.pending[userID], requesterID)
	return nil
}

func (g *fakeGraph) link(a, b string) {
	if g.edges[a] == nil {
		g.edges[a] = make(map[string]bool)
	}
	g.edges[a][b] = true
}

type broadcastCall struct {
	Room    string
	Event   string
	Payload interface{}
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (b *fakeBroadcaster) BroadcastTo(room, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, broadcastCall{Room: room, Event: event, Payload: payload})
}

func (b *fakeBroadcaster) eventsNamed(event string) []broadcastCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []broadcastCall
	for _, call := range b.calls {
		if call.Event == event {
			out = append(out, call)
		}
	}
	return out
}
