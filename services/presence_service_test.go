package services

import (
	"context"
	"testing"
	"time"

	"github.com/Hemdan-MK/Code-Battle-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity(userID string) models.Identity {
	return models.Identity{UserID: userID, Username: "name-" + userID, Tag: "0001"}
}

func presenceFixture() (*PresenceService, *fakeUserStore, *fakeGraph) {
	users := newFakeUserStore(
		models.UserRecord{UserID: "alice", Username: "name-alice", Tag: "0001"},
		models.UserRecord{UserID: "bob", Username: "name-bob", Tag: "0001"},
		models.UserRecord{UserID: "carol", Username: "name-carol", Tag: "0001", Status: models.StatusOffline, LastSeen: "2026-08-01T10:00:00Z"},
	)
	graph := newFakeGraph()
	return NewPresenceService(users, graph), users, graph
}

func TestRegisterPresenceReturnsMergedSnapshot(t *testing.T) {
	ctx := context.Background()
	presence, users, graph := presenceFixture()
	require.NoError(t, graph.AddEdge(ctx, "alice", "bob"))
	require.NoError(t, graph.AddEdge(ctx, "alice", "carol"))

	// Bob is live, Carol is not.
	bobConn := newFakeConn("conn-bob")
	_, err := presence.RegisterPresence(ctx, "bob", testIdentity("bob"), bobConn)
	require.NoError(t, err)

	aliceConn := newFakeConn("conn-alice")
	snapshot, err := presence.RegisterPresence(ctx, "alice", testIdentity("alice"), aliceConn)
	require.NoError(t, err)
	require.Len(t, snapshot.Friends, 2)

	byID := map[string]models.FriendStatus{}
	for _, f := range snapshot.Friends {
		byID[f.UserID] = f
	}
	assert.Equal(t, models.StatusOnline, byID["bob"].Status)
	assert.Equal(t, models.ActivityAvailable, byID["bob"].Activity)
	assert.Equal(t, models.StatusOffline, byID["carol"].Status)
	assert.Equal(t, "2026-08-01T10:00:00Z", byID["carol"].LastSeen)

	// Bob was told Alice came online; Carol could not be.
	updates := bobConn.eventsNamed(models.EventFriendStatusUpdate)
	require.Len(t, updates, 1)
	update := updates[0].Payload.(models.FriendStatusUpdate)
	assert.Equal(t, "alice", update.UserID)
	assert.Equal(t, models.StatusOnline, update.Status)

	// The durable mirror saw the online write.
	call, ok := users.lastStatus("alice")
	require.True(t, ok)
	assert.Equal(t, models.StatusOnline, call.Status)

	// Personal room joined.
	assert.True(t, aliceConn.inRoom(UserRoom("alice")))
}

func TestRegisterPresenceRejectsMismatchedIdentity(t *testing.T) {
	presence, _, _ := presenceFixture()
	_, err := presence.RegisterPresence(context.Background(), "bob", testIdentity("alice"), newFakeConn("c1"))
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, presence.IsOnline("bob"))
}

func TestSecondLoginEvictsFirstConnection(t *testing.T) {
	ctx := context.Background()
	presence, _, _ := presenceFixture()

	first := newFakeConn("conn-1")
	_, err := presence.RegisterPresence(ctx, "alice", testIdentity("alice"), first)
	require.NoError(t, err)

	second := newFakeConn("conn-2")
	_, err = presence.RegisterPresence(ctx, "alice", testIdentity("alice"), second)
	require.NoError(t, err)

	assert.True(t, first.isClosed())
	assert.Len(t, first.eventsNamed(models.EventSessionReplaced), 1)

	// Pushes now land on the new connection.
	require.True(t, presence.EmitToUser("alice", "ping", nil))
	assert.Len(t, second.eventsNamed("ping"), 1)
	assert.Empty(t, first.eventsNamed("ping"))

	// The evicted connection's disconnect must not tear down the new entry.
	_, ok := presence.Remove("conn-1")
	assert.False(t, ok)
	assert.True(t, presence.IsOnline("alice"))
}

// reentrantConn re-enters the registry from Close, mirroring the socket
// layer where closing a channel fires its disconnect cleanup on the same
// goroutine.
type reentrantConn struct {
	*fakeConn
	presence *PresenceService
}

func (c *reentrantConn) Close() {
	c.fakeConn.Close()
	c.presence.Remove(c.Id())
}

func TestEvictionSurvivesReentrantDisconnect(t *testing.T) {
	ctx := context.Background()
	presence, _, _ := presenceFixture()

	first := &reentrantConn{fakeConn: newFakeConn("conn-1"), presence: presence}
	_, err := presence.RegisterPresence(ctx, "alice", testIdentity("alice"), first)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := presence.RegisterPresence(ctx, "alice", testIdentity("alice"), newFakeConn("conn-2"))
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second registration blocked on the evicted connection's cleanup")
	}

	assert.True(t, first.isClosed())
	assert.Len(t, first.eventsNamed(models.EventSessionReplaced), 1)
	assert.True(t, presence.IsOnline("alice"))

	userID, ok := presence.Remove("conn-2")
	assert.True(t, ok)
	assert.Equal(t, "alice", userID)
}

func TestPushStatusFansOutToPresentFriends(t *testing.T) {
	ctx := context.Background()
	presence, users, graph := presenceFixture()
	require.NoError(t, graph.AddEdge(ctx, "alice", "bob"))

	bobConn := newFakeConn("conn-bob")
	_, err := presence.RegisterPresence(ctx, "bob", testIdentity("bob"), bobConn)
	require.NoError(t, err)
	aliceConn := newFakeConn("conn-alice")
	_, err = presence.RegisterPresence(ctx, "alice", testIdentity("alice"), aliceConn)
	require.NoError(t, err)

	require.NoError(t, presence.PushStatus(ctx, "alice", testIdentity("alice"), models.ActivityInGame))

	updates := bobConn.eventsNamed(models.EventFriendStatusUpdate)
	require.NotEmpty(t, updates)
	last := updates[len(updates)-1].Payload.(models.FriendStatusUpdate)
	assert.Equal(t, models.ActivityInGame, last.Activity)

	entry, ok := presence.Entry("alice")
	require.True(t, ok)
	assert.Equal(t, models.ActivityInGame, entry.Activity)

	call, ok := users.lastStatus("alice")
	require.True(t, ok)
	assert.Equal(t, models.ActivityInGame, call.Activity)
}

func TestPushStatusErrors(t *testing.T) {
	ctx := context.Background()
	presence, _, _ := presenceFixture()

	err := presence.PushStatus(ctx, "bob", testIdentity("alice"), models.ActivityInGame)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Authenticated but never registered presence.
	err = presence.PushStatus(ctx, "alice", testIdentity("alice"), models.ActivityInGame)
	assert.ErrorIs(t, err, ErrNotOnline)
}

func TestGetFriendsListDoesNotMutateState(t *testing.T) {
	ctx := context.Background()
	presence, users, graph := presenceFixture()
	require.NoError(t, graph.AddEdge(ctx, "alice", "carol"))
	require.NoError(t, graph.AddPending(ctx, "alice", "bob"))

	before := len(users.statusCalls)
	snapshot, err := presence.GetFriendsList(ctx, "alice", testIdentity("alice"))
	require.NoError(t, err)

	require.Len(t, snapshot.Friends, 1)
	assert.Equal(t, "carol", snapshot.Friends[0].UserID)
	require.Len(t, snapshot.Pending, 1)
	assert.Equal(t, "bob", snapshot.Pending[0].RequesterID)
	assert.Equal(t, "name-bob", snapshot.Pending[0].Username)

	assert.Len(t, users.statusCalls, before)
	assert.False(t, presence.IsOnline("alice"))
}

func TestRemoveAndNotifyOffline(t *testing.T) {
	ctx := context.Background()
	presence, users, graph := presenceFixture()
	require.NoError(t, graph.AddEdge(ctx, "alice", "bob"))

	bobConn := newFakeConn("conn-bob")
	_, err := presence.RegisterPresence(ctx, "bob", testIdentity("bob"), bobConn)
	require.NoError(t, err)
	_, err = presence.RegisterPresence(ctx, "alice", testIdentity("alice"), newFakeConn("conn-alice"))
	require.NoError(t, err)

	userID, ok := presence.Remove("conn-alice")
	require.True(t, ok)
	assert.Equal(t, "alice", userID)
	assert.False(t, presence.IsOnline("alice"))

	presence.NotifyOffline(ctx, userID)

	updates := bobConn.eventsNamed(models.EventFriendStatusUpdate)
	require.NotEmpty(t, updates)
	last := updates[len(updates)-1].Payload.(models.FriendStatusUpdate)
	assert.Equal(t, models.StatusOffline, last.Status)

	call, ok := users.lastStatus("alice")
	require.True(t, ok)
	assert.Equal(t, models.StatusOffline, call.Status)

	// Reconciling the same connection again is a no-op.
	_, ok = presence.Remove("conn-alice")
	assert.False(t, ok)
}

func TestEmitToUserSkipsAbsentTarget(t *testing.T) {
	presence, _, _ := presenceFixture()
	assert.False(t, presence.EmitToUser("nobody", "ping", nil))
	assert.False(t, presence.JoinRoom("nobody", "room"))
	assert.False(t, presence.LeaveRoom("nobody", "room"))
}
