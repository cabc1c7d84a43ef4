package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Hemdan-MK/Code-Battle-sub000/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// FriendGraphStore is the persisted friend graph boundary: a symmetric
// friend relation plus a pending-request inbox per user. The coordinator
// mutates it through these calls but does not own its schema.
type FriendGraphStore interface {
	GetFriends(ctx context.Context, userID string) ([]string, error)
	GetPendingInbox(ctx context.Context, userID string) ([]string, error)
	HasEdge(ctx context.Context, userID, friendID string) (bool, error)
	HasPending(ctx context.Context, userID, requesterID string) (bool, error)
	PromotePending(ctx context.Context, userID, requesterID string) error
	RemoveEdge(ctx context.Context, userID, friendID string) error
	AddPending(ctx context.Context, userID, requesterID string) error
	RemovePending(ctx context.Context, userID, requesterID string) error
}

// FriendGraphService implements FriendGraphStore on the Friends and
// FriendRequests tables.
type FriendGraphService struct {
	Dynamo *DynamoService
}

// GetFriends returns the ids of every friend of userID.
func (s *FriendGraphService) GetFriends(ctx context.Context, userID string) ([]string, error) {
	items, err := s.Dynamo.QueryItems(ctx, models.FriendEdge{}.TableName(), "userId = :userId",
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		}, nil)
	if err != nil {
		return nil, err
	}

	var edges []models.FriendEdge
	if err := attributevalue.UnmarshalListOfMaps(items, &edges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal friend edges: %w", err)
	}

	friends := make([]string, 0, len(edges))
	for _, edge := range edges {
		friends = append(friends, edge.FriendID)
	}
	return friends, nil
}

// GetPendingInbox returns the requester ids waiting in userID's inbox.
func (s *FriendGraphService) GetPendingInbox(ctx context.Context, userID string) ([]string, error) {
	items, err := s.Dynamo.QueryItems(ctx, models.FriendRequest{}.TableName(), "userId = :userId",
		map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		}, nil)
	if err != nil {
		return nil, err
	}

	var requests []models.FriendRequest
	if err := attributevalue.UnmarshalListOfMaps(items, &requests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal friend requests: %w", err)
	}

	requesters := make([]string, 0, len(requests))
	for _, req := range requests {
		requesters = append(requesters, req.RequesterID)
	}
	return requesters, nil
}

// HasEdge reports whether the friendship edge userID -> friendID exists.
func (s *FriendGraphService) HasEdge(ctx context.Context, userID, friendID string) (bool, error) {
	_, err := s.Dynamo.GetItem(ctx, models.FriendEdge{}.TableName(), map[string]types.AttributeValue{
		"userId":   &types.AttributeValueMemberS{Value: userID},
		"friendId": &types.AttributeValueMemberS{Value: friendID},
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HasPending reports whether requesterID is already in userID's inbox.
func (s *FriendGraphService) HasPending(ctx context.Context, userID, requesterID string) (bool, error) {
	_, err := s.Dynamo.GetItem(ctx, models.FriendRequest{}.TableName(), map[string]types.AttributeValue{
		"userId":      &types.AttributeValueMemberS{Value: userID},
		"requesterId": &types.AttributeValueMemberS{Value: requesterID},
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PromotePending turns a pending request into a symmetric friendship in one
// transaction, so the edge and the inbox entry can never disagree: both
// edge directions are written and the pending entry deleted, or nothing is.
func (s *FriendGraphService) PromotePending(ctx context.Context, userID, requesterID string) error {
	createdAt := time.Now().UTC().Format(time.RFC3339)
	friendsTable := models.FriendEdge{}.TableName()
	requestsTable := models.FriendRequest{}.TableName()

	var items []types.TransactWriteItem
	for _, edge := range []models.FriendEdge{
		{UserID: userID, FriendID: requesterID, CreatedAt: createdAt},
		{UserID: requesterID, FriendID: userID, CreatedAt: createdAt},
	} {
		item, err := attributevalue.MarshalMap(edge)
		if err != nil {
			return fmt.Errorf("failed to marshal friend edge: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{TableName: &friendsTable, Item: item},
		})
	}
	items = append(items, types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: &requestsTable,
			Key: map[string]types.AttributeValue{
				"userId":      &types.AttributeValueMemberS{Value: userID},
				"requesterId": &types.AttributeValueMemberS{Value: requesterID},
			},
		},
	})

	return s.Dynamo.TransactWriteItems(ctx, items)
}

// RemoveEdge deletes both directions of the friendship in one batch.
func (s *FriendGraphService) RemoveEdge(ctx context.Context, userID, friendID string) error {
	requests := []types.WriteRequest{
		{DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{
			"userId":   &types.AttributeValueMemberS{Value: userID},
			"friendId": &types.AttributeValueMemberS{Value: friendID},
		}}},
		{DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{
			"userId":   &types.AttributeValueMemberS{Value: friendID},
			"friendId": &types.AttributeValueMemberS{Value: userID},
		}}},
	}

	return s.Dynamo.BatchWriteItems(ctx, models.FriendEdge{}.TableName(), requests)
}

// AddPending appends requesterID to userID's inbox.
func (s *FriendGraphService) AddPending(ctx context.Context, userID, requesterID string) error {
	request := models.FriendRequest{
		UserID:      userID,
		RequesterID: requesterID,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	return s.Dynamo.PutItem(ctx, models.FriendRequest{}.TableName(), request)
}

// RemovePending drops requesterID from userID's inbox.
func (s *FriendGraphService) RemovePending(ctx context.Context, userID, requesterID string) error {
	return s.Dynamo.DeleteItem(ctx, models.FriendRequest{}.TableName(), map[string]types.AttributeValue{
		"userId":      &types.AttributeValueMemberS{Value: userID},
		"requesterId": &types.AttributeValueMemberS{Value: requesterID},
	})
}

// FriendService runs the friend-request state machine on top of the graph
// store. Graph mutations always succeed or fail on their own; notifying the
// counterpart is best-effort and silently skipped when they are offline.
type FriendService struct {
	Graph    FriendGraphStore
	Users    UserStore
	Presence PresenceDirectory
}

// SendRequest resolves the target by handle and appends the caller to the
// target's pending inbox.
func (s *FriendService) SendRequest(ctx context.Context, caller models.Identity, targetUsername, targetTag string) (*models.FriendRequestSent, error) {
	targetID, err := s.Users.FindByHandle(ctx, targetUsername, targetTag)
	if err != nil {
		return nil, err
	}
	if targetID == caller.UserID {
		return nil, ErrSelfReference
	}

	alreadyFriends, err := s.Graph.HasEdge(ctx, caller.UserID, targetID)
	if err != nil {
		return nil, err
	}
	if alreadyFriends {
		return nil, ErrAlreadyFriends
	}

	alreadyPending, err := s.Graph.HasPending(ctx, targetID, caller.UserID)
	if err != nil {
		return nil, err
	}
	if alreadyPending {
		return nil, ErrAlreadyPending
	}

	if err := s.Graph.AddPending(ctx, targetID, caller.UserID); err != nil {
		return nil, err
	}

	// Offline targets see the pending entry on their next inbox read.
	s.Presence.EmitToUser(targetID, models.EventFriendRequestReceived, models.FriendRequestReceived{
		SenderID:     caller.UserID,
		SenderName:   caller.Username,
		SenderTag:    caller.Tag,
		SenderAvatar: caller.Avatar,
	})

	log.Printf("📤 Friend request: %s -> %s#%s", caller.UserID, targetUsername, targetTag)
	return &models.FriendRequestSent{TargetID: targetID}, nil
}

// AcceptRequest promotes the pending entry into a symmetric friendship
// edge in a single store transaction.
func (s *FriendService) AcceptRequest(ctx context.Context, caller models.Identity, requesterID string) (*models.FriendAdded, error) {
	pending, err := s.Graph.HasPending(ctx, caller.UserID, requesterID)
	if err != nil {
		return nil, err
	}
	if !pending {
		return nil, fmt.Errorf("no pending request from %s: %w", requesterID, ErrNotFound)
	}

	requester, err := s.Users.GetUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	if err := s.Graph.PromotePending(ctx, caller.UserID, requesterID); err != nil {
		return nil, err
	}

	s.Presence.EmitToUser(requesterID, models.EventFriendRequestAccepted, models.FriendRequestAccepted{
		UserID:   caller.UserID,
		Username: caller.Username,
	})

	status := requester.Status
	if s.Presence.IsOnline(requesterID) {
		status = models.StatusOnline
	}
	return &models.FriendAdded{Friend: models.FriendStatus{
		UserID:   requester.UserID,
		Username: requester.Username,
		Tag:      requester.Tag,
		Avatar:   requester.Avatar,
		Status:   status,
		Activity: requester.Activity,
		LastSeen: requester.LastSeen,
	}}, nil
}

// RejectRequest clears the inbox entry without creating an edge.
func (s *FriendService) RejectRequest(ctx context.Context, caller models.Identity, requesterID string) error {
	pending, err := s.Graph.HasPending(ctx, caller.UserID, requesterID)
	if err != nil {
		return err
	}
	if !pending {
		return fmt.Errorf("no pending request from %s: %w", requesterID, ErrNotFound)
	}

	if err := s.Graph.RemovePending(ctx, caller.UserID, requesterID); err != nil {
		return err
	}

	s.Presence.EmitToUser(requesterID, models.EventFriendRequestDeclined, models.FriendRequestDeclined{
		UserID: caller.UserID,
	})
	return nil
}

// RemoveFriend deletes the symmetric edge.
func (s *FriendService) RemoveFriend(ctx context.Context, caller models.Identity, friendID string) error {
	exists, err := s.Graph.HasEdge(ctx, caller.UserID, friendID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("no friendship with %s: %w", friendID, ErrNotFound)
	}

	if err := s.Graph.RemoveEdge(ctx, caller.UserID, friendID); err != nil {
		return err
	}

	s.Presence.EmitToUser(friendID, models.EventFriendRemoved, models.FriendRemoved{
		UserID: caller.UserID,
	})
	return nil
}
