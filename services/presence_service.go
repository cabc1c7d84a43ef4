package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Hemdan-MK/Code-Battle-sub000/models"
)

// Connection is the live handle used to push events to one specific client.
// The socket layer adapts its channel type to this; tests substitute fakes.
type Connection interface {
	Id() string
	Join(room string) error
	Leave(room string) error
	Emit(event string, payload interface{}) error
	Close()
}

// PresenceEntry is the in-memory record of one currently-connected user. It
// exists iff the connection is live and authenticated; nothing persists it.
type PresenceEntry struct {
	Conn     Connection
	Identity models.Identity
	Status   string
	Activity string
	LastSeen time.Time
}

// PresenceDirectory is the routing surface other services use to reach
// currently-connected peers. All sends are best-effort: an offline target is
// silently skipped, there is no retry and no queue.
type PresenceDirectory interface {
	EmitToUser(userID, event string, payload interface{}) bool
	IsOnline(userID string) bool
	JoinRoom(userID, room string) bool
	LeaveRoom(userID, room string) bool
}

// PresenceService is the single source of truth for who is online right
// now. One coarse RWMutex guards both maps; store I/O happens before the
// lock is taken so no network round trip runs under it.
type PresenceService struct {
	Users UserStore
	Graph FriendGraphStore

	mu      sync.RWMutex
	entries map[string]*PresenceEntry // userId -> entry
	byConn  map[string]string         // connection id -> userId
}

// NewPresenceService returns an empty registry backed by the given stores.
func NewPresenceService(users UserStore, graph FriendGraphStore) *PresenceService {
	return &PresenceService{
		Users:   users,
		Graph:   graph,
		entries: make(map[string]*PresenceEntry),
		byConn:  make(map[string]string),
	}
}

// UserRoom is the implicit personal broadcast channel for one user.
func UserRoom(userID string) string {
	return "user:" + userID
}

// RegisterPresence inserts (or replaces) the caller's entry, persists the
// online status, notifies present friends and returns the friends snapshot.
// A second login from the same identity evicts the previous connection.
func (s *PresenceService) RegisterPresence(ctx context.Context, claimedUserID string, identity models.Identity, conn Connection) (*models.FriendsSnapshot, error) {
	if claimedUserID != identity.UserID {
		return nil, ErrUnauthorized
	}

	now := time.Now().UTC()
	if err := s.Users.SetStatus(ctx, identity.UserID, models.StatusOnline, models.ActivityAvailable, now); err != nil {
		return nil, err
	}

	friendIDs, records, pending, err := s.loadGraph(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	if err := conn.Join(UserRoom(identity.UserID)); err != nil {
		log.Printf("⚠️ Failed to join personal room for %s: %v", identity.UserID, err)
	}

	var evicted Connection

	s.mu.Lock()
	if old, ok := s.entries[identity.UserID]; ok && old.Conn.Id() != conn.Id() {
		log.Printf("👥 Second login for %s, evicting connection %s", identity.UserID, old.Conn.Id())
		delete(s.byConn, old.Conn.Id())
		evicted = old.Conn
	}

	entry := &PresenceEntry{
		Conn:     conn,
		Identity: identity,
		Status:   models.StatusOnline,
		Activity: models.ActivityAvailable,
		LastSeen: now,
	}
	s.entries[identity.UserID] = entry
	s.byConn[conn.Id()] = identity.UserID

	s.fanOutLocked(identity.UserID, friendIDs, models.StatusOnline, entry.Activity)
	snapshot := s.snapshotLocked(friendIDs, records, pending)
	s.mu.Unlock()

	// Close fires the disconnect handler on the closing goroutine, and that
	// handler re-enters Remove. It must run after the lock is released.
	if evicted != nil {
		_ = evicted.Emit(models.EventSessionReplaced, struct{}{})
		evicted.Close()
	}
	return snapshot, nil
}

// PushStatus updates the caller's activity and re-broadcasts to friends.
func (s *PresenceService) PushStatus(ctx context.Context, claimedUserID string, identity models.Identity, activity string) error {
	if claimedUserID != identity.UserID {
		return ErrUnauthorized
	}

	now := time.Now().UTC()
	if err := s.Users.SetStatus(ctx, identity.UserID, models.StatusOnline, activity, now); err != nil {
		return err
	}

	friendIDs, err := s.Graph.GetFriends(ctx, identity.UserID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[identity.UserID]
	if !ok {
		return ErrNotOnline
	}
	entry.Activity = activity
	entry.LastSeen = now

	s.fanOutLocked(identity.UserID, friendIDs, models.StatusOnline, activity)
	return nil
}

// GetFriendsList returns the snapshot without touching presence state.
func (s *PresenceService) GetFriendsList(ctx context.Context, claimedUserID string, identity models.Identity) (*models.FriendsSnapshot, error) {
	if claimedUserID != identity.UserID {
		return nil, ErrUnauthorized
	}

	friendIDs, records, pending, err := s.loadGraph(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(friendIDs, records, pending), nil
}

// Remove drops the entry belonging to a connection id, if any. Looked up by
// connection handle, never by a claimed userId, so a stale or spoofed
// identity cannot clean up someone else's presence.
func (s *PresenceService) Remove(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.byConn[connID]
	if !ok {
		return "", false
	}
	delete(s.byConn, connID)
	delete(s.entries, userID)
	return userID, true
}

// NotifyOffline persists the offline status and fans it out to present
// friends. Called after Remove, once team state has been unwound.
func (s *PresenceService) NotifyOffline(ctx context.Context, userID string) {
	now := time.Now().UTC()
	if err := s.Users.SetStatus(ctx, userID, models.StatusOffline, "", now); err != nil {
		log.Printf("❌ Failed to persist offline status for %s: %v", userID, err)
	}

	friendIDs, err := s.Graph.GetFriends(ctx, userID)
	if err != nil {
		log.Printf("❌ Failed to load friends for offline fan-out of %s: %v", userID, err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	s.fanOutLocked(userID, friendIDs, models.StatusOffline, "")
}

// EmitToUser pushes one event to a user's live connection. Reports whether
// the user was present; a false return is not an error.
func (s *PresenceService) EmitToUser(userID, event string, payload interface{}) bool {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if err := entry.Conn.Emit(event, payload); err != nil {
		log.Printf("⚠️ Dropped %s push to %s: %v", event, userID, err)
	}
	return true
}

// IsOnline reports whether the user has a live entry.
func (s *PresenceService) IsOnline(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[userID]
	return ok
}

// JoinRoom subscribes a user's live connection to a broadcast room.
func (s *PresenceService) JoinRoom(userID, room string) bool {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if err := entry.Conn.Join(room); err != nil {
		log.Printf("⚠️ Failed to join room %s for %s: %v", room, userID, err)
		return false
	}
	return true
}

// LeaveRoom unsubscribes a user's live connection from a broadcast room.
func (s *PresenceService) LeaveRoom(userID, room string) bool {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if err := entry.Conn.Leave(room); err != nil {
		log.Printf("⚠️ Failed to leave room %s for %s: %v", room, userID, err)
		return false
	}
	return true
}

// Entry returns a copy of the live entry for a user.
func (s *PresenceService) Entry(userID string) (PresenceEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[userID]
	if !ok {
		return PresenceEntry{}, false
	}
	return *entry, true
}

// loadGraph performs all store reads needed for a snapshot, before any lock
// is taken.
func (s *PresenceService) loadGraph(ctx context.Context, userID string) ([]string, map[string]*models.UserRecord, []models.PendingRequestView, error) {
	friendIDs, err := s.Graph.GetFriends(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}

	records := make(map[string]*models.UserRecord, len(friendIDs))
	for _, id := range friendIDs {
		record, err := s.Users.GetUser(ctx, id)
		if err != nil {
			log.Printf("⚠️ Skipping friend %s in snapshot: %v", id, err)
			continue
		}
		records[id] = record
	}

	requesterIDs, err := s.Graph.GetPendingInbox(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	pending := make([]models.PendingRequestView, 0, len(requesterIDs))
	for _, id := range requesterIDs {
		record, err := s.Users.GetUser(ctx, id)
		if err != nil {
			log.Printf("⚠️ Skipping pending requester %s in snapshot: %v", id, err)
			continue
		}
		pending = append(pending, models.PendingRequestView{
			RequesterID: record.UserID,
			Username:    record.Username,
			Tag:         record.Tag,
			Avatar:      record.Avatar,
		})
	}

	return friendIDs, records, pending, nil
}

// snapshotLocked merges graph membership with live presence. Present
// friends report online plus their live activity; absent friends fall back
// to the persisted status and timestamp. Caller holds at least a read lock.
func (s *PresenceService) snapshotLocked(friendIDs []string, records map[string]*models.UserRecord, pending []models.PendingRequestView) *models.FriendsSnapshot {
	friends := make([]models.FriendStatus, 0, len(friendIDs))
	for _, id := range friendIDs {
		record, ok := records[id]
		if !ok {
			continue
		}
		status := models.FriendStatus{
			UserID:   record.UserID,
			Username: record.Username,
			Tag:      record.Tag,
			Avatar:   record.Avatar,
			Status:   record.Status,
			Activity: record.Activity,
			LastSeen: record.LastSeen,
		}
		if entry, live := s.entries[id]; live {
			status.Status = models.StatusOnline
			status.Activity = entry.Activity
			status.LastSeen = entry.LastSeen.Format(time.RFC3339)
		}
		friends = append(friends, status)
	}
	return &models.FriendsSnapshot{Friends: friends, Pending: pending}
}

// fanOutLocked pushes a status change to every present friend. Caller holds
// at least a read lock.
func (s *PresenceService) fanOutLocked(userID string, friendIDs []string, status, activity string) {
	update := models.FriendStatusUpdate{UserID: userID, Status: status, Activity: activity}
	for _, id := range friendIDs {
		entry, ok := s.entries[id]
		if !ok {
			continue
		}
		if err := entry.Conn.Emit(models.EventFriendStatusUpdate, update); err != nil {
			log.Printf("⚠️ Dropped status update to %s: %v", id, err)
		}
	}
}
