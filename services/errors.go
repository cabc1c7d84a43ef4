package services

import (
	"errors"

	"github.com/Hemdan-MK/Code-Battle-sub000/models"
)

// Operation-level errors. Handlers never let these cross the connection
// boundary as anything other than a scoped error event to the caller.
var (
	ErrUnauthorized   = errors.New("caller identity does not match the authenticated connection")
	ErrNotFound       = errors.New("not found")
	ErrSelfReference  = errors.New("cannot target yourself")
	ErrAlreadyFriends = errors.New("users are already friends")
	ErrAlreadyPending = errors.New("friend request already pending")
	ErrAlreadyInTeam  = errors.New("user is already in a team")
	ErrTeamFull       = errors.New("team is full")
	ErrNotOnline      = errors.New("user has no live connection")
	ErrNotInTeam      = errors.New("user is not in a team")
	ErrInvalidMode    = errors.New("invalid team mode")
)

// ErrorCode maps an operation error to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return models.CodeUnauthorized
	case errors.Is(err, ErrNotFound):
		return models.CodeNotFound
	case errors.Is(err, ErrSelfReference):
		return models.CodeSelfReference
	case errors.Is(err, ErrAlreadyFriends):
		return models.CodeAlreadyFriend
	case errors.Is(err, ErrAlreadyPending):
		return models.CodeAlreadyPend
	case errors.Is(err, ErrAlreadyInTeam):
		return models.CodeAlreadyInTeam
	case errors.Is(err, ErrTeamFull):
		return models.CodeTeamFull
	case errors.Is(err, ErrNotOnline):
		return models.CodeNotOnline
	case errors.Is(err, ErrNotInTeam):
		return models.CodeNotInTeam
	case errors.Is(err, ErrInvalidMode):
		return models.CodeInvalidMode
	default:
		return models.CodeInternal
	}
}
