package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Hemdan-MK/Code-Battle-sub000/models"
	"github.com/Hemdan-MK/Code-Battle-sub000/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UserStore is the durable mirror of user identity and presence. The
// coordinator reads identity from it at connection time and writes status
// back on presence changes; it owns nothing else about the user.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.UserRecord, error)
	FindByHandle(ctx context.Context, username, tag string) (string, error)
	SetStatus(ctx context.Context, userID, status, activity string, lastSeen time.Time) error
}

// UserService implements UserStore on the Users table.
type UserService struct {
	Dynamo *DynamoService
}

// GetUser fetches a user record by id. Returns ErrNotFound if no such user.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.UserRecord, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.UsersTable, key)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	var record models.UserRecord
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user record: %w", err)
	}
	return &record, nil
}

// FindByHandle resolves a username+tag pair to a userId through the
// HandleIndex GSI. The UI collects human-readable handles, not ids.
func (s *UserService) FindByHandle(ctx context.Context, username, tag string) (string, error) {
	keyCondition := "username = :username AND tag = :tag"
	expressionValues := map[string]types.AttributeValue{
		":username": &types.AttributeValueMemberS{Value: username},
		":tag":      &types.AttributeValueMemberS{Value: tag},
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.UsersTable, models.UsersHandleIndex, keyCondition, expressionValues, 1)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", fmt.Errorf("handle %s#%s: %w", username, tag, ErrNotFound)
	}

	userID := utils.ExtractString(items[0], "userId")
	if userID == "" {
		return "", fmt.Errorf("handle %s#%s resolved to a record without userId: %w", username, tag, ErrNotFound)
	}
	return userID, nil
}

// SetStatus persists the durable presence mirror for a user.
func (s *UserService) SetStatus(ctx context.Context, userID, status, activity string, lastSeen time.Time) error {
	updateExpression := "SET #s = :status, #a = :activity, lastSeen = :lastSeen"
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	expressionValues := map[string]types.AttributeValue{
		":status":   &types.AttributeValueMemberS{Value: status},
		":activity": &types.AttributeValueMemberS{Value: activity},
		":lastSeen": &types.AttributeValueMemberS{Value: lastSeen.UTC().Format(time.RFC3339)},
	}
	expressionNames := map[string]string{
		"#s": "status",
		"#a": "activity",
	}

	_, err := s.Dynamo.UpdateItem(ctx, models.UsersTable, updateExpression, key, expressionValues, expressionNames)
	return err
}
