package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/Hemdan-MK/Code-Battle-sub000/models"
	"github.com/Hemdan-MK/Code-Battle-sub000/services"

	gosocketio "github.com/erock530/gosf-socketio"
)

// Request operation names.
const (
	OpRegisterPresence    = "register_presence"
	OpPushStatus          = "push_status"
	OpGetFriendsList      = "get_friends_list"
	OpSendFriendRequest   = "send_friend_request"
	OpAcceptFriendRequest = "accept_friend_request"
	OpRejectFriendRequest = "reject_friend_request"
	OpRemoveFriend        = "remove_friend"
	OpCreateTeam          = "create_team"
	OpSendTeamInvite      = "send_team_invite"
	OpRespondTeamInvite   = "respond_team_invite"
	OpUpdateReadyStatus   = "update_ready_status"
	OpLeaveTeam           = "leave_team"
	OpSendTeamMessage     = "send_team_message"
	OpLogout              = "logout"
)

// Envelope is the single inbound request event. Op selects the request
// type, Data carries its payload. Decoding produces one of the closed set
// of request types below, so adding an operation means the switch in
// handle stops compiling until it is covered.
type Envelope struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

type request interface {
	isRequest()
}

type registerPresenceRequest struct {
	UserID string `json:"userId"`
}

type pushStatusRequest struct {
	UserID   string `json:"userId"`
	Activity string `json:"activity"`
}

type getFriendsListRequest struct {
	UserID string `json:"userId"`
}

type sendFriendRequestRequest struct {
	Username string `json:"username"`
	Tag      string `json:"tag"`
}

type acceptFriendRequestRequest struct {
	RequesterID string `json:"requesterId"`
}

type rejectFriendRequestRequest struct {
	RequesterID string `json:"requesterId"`
}

type removeFriendRequest struct {
	FriendID string `json:"friendId"`
}

type createTeamRequest struct {
	UserID string `json:"userId"`
	Mode   string `json:"mode"`
}

type sendTeamInviteRequest struct {
	ReceiverID string `json:"receiverId"`
	TeamID     string `json:"teamId"`
}

type respondTeamInviteRequest struct {
	TeamID   string `json:"teamId"`
	Accepted bool   `json:"accepted"`
}

type updateReadyStatusRequest struct {
	Ready bool `json:"ready"`
}

type leaveTeamRequest struct{}

type sendTeamMessageRequest struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type logoutRequest struct{}

func (registerPresenceRequest) isRequest()    {}
func (pushStatusRequest) isRequest()          {}
func (getFriendsListRequest) isRequest()      {}
func (sendFriendRequestRequest) isRequest()   {}
func (acceptFriendRequestRequest) isRequest() {}
func (rejectFriendRequestRequest) isRequest() {}
func (removeFriendRequest) isRequest()        {}
func (createTeamRequest) isRequest()          {}
func (sendTeamInviteRequest) isRequest()      {}
func (respondTeamInviteRequest) isRequest()   {}
func (updateReadyStatusRequest) isRequest()   {}
func (leaveTeamRequest) isRequest()           {}
func (sendTeamMessageRequest) isRequest()     {}
func (logoutRequest) isRequest()              {}

// decodeRequest maps an envelope to its typed request.
func decodeRequest(op string, data json.RawMessage) (request, error) {
	var req request
	switch op {
	case OpRegisterPresence:
		req = &registerPresenceRequest{}
	case OpPushStatus:
		req = &pushStatusRequest{}
	case OpGetFriendsList:
		req = &getFriendsListRequest{}
	case OpSendFriendRequest:
		req = &sendFriendRequestRequest{}
	case OpAcceptFriendRequest:
		req = &acceptFriendRequestRequest{}
	case OpRejectFriendRequest:
		req = &rejectFriendRequestRequest{}
	case OpRemoveFriend:
		req = &removeFriendRequest{}
	case OpCreateTeam:
		req = &createTeamRequest{}
	case OpSendTeamInvite:
		req = &sendTeamInviteRequest{}
	case OpRespondTeamInvite:
		req = &respondTeamInviteRequest{}
	case OpUpdateReadyStatus:
		req = &updateReadyStatusRequest{}
	case OpLeaveTeam:
		req = &leaveTeamRequest{}
	case OpSendTeamMessage:
		req = &sendTeamMessageRequest{}
	case OpLogout:
		req = &logoutRequest{}
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("invalid payload for %q: %w", op, err)
		}
	}
	return req, nil
}

// handle is the single entry point for every inbound request. Errors are
// converted to a scoped error event on the originating connection only;
// nothing escapes past here.
func (s *Server) handle(c *gosocketio.Channel, env Envelope) {
	identity, ok := s.sessionOf(c.Id())
	if !ok {
		s.emitError(c, env.Op, models.CodeUnauthorized, "connection is not authenticated")
		return
	}

	req, err := decodeRequest(env.Op, env.Data)
	if err != nil {
		s.emitError(c, env.Op, models.CodeBadRequest, err.Error())
		return
	}

	ctx := context.Background()
	conn := channelConn{ch: c}

	switch req := req.(type) {
	case *registerPresenceRequest:
		snapshot, err := s.Presence.RegisterPresence(ctx, req.UserID, identity, conn)
		if err != nil {
			s.fail(c, env.Op, err)
			return
		}
		s.emit(c, models.EventFriendsList, snapshot)

	case *pushStatusRequest:
		if err := s.Presence.PushStatus(ctx, req.UserID, identity, req.Activity); err != nil {
			s.fail(c, env.Op, err)
		}

	case *getFriendsListRequest:
		snapshot, err := s.Presence.GetFriendsList(ctx, req.UserID, identity)
		if err != nil {
			s.fail(c, env.Op, err)
			return
		}
		s.emit(c, models.EventFriendsList, snapshot)

	case *sendFriendRequestRequest:
		ack, err := s.Friends.SendRequest(ctx, identity, req.Username, req.Tag)
		if err != nil {
			s.fail(c, env.Op, err)
			return
		}
		s.emit(c, models.EventFriendRequestSent, ack)

	case *acceptFriendRequestRequest:
		ack, err := s.Friends.AcceptRequest(ctx, identity, req.RequesterID)
		if err != nil {
			s.fail(c, env.Op, err)
			return
		}
		s.emit(c, models.EventFriendAdded, ack)

	case *rejectFriendRequestRequest:
		if err := s.Friends.RejectRequest(ctx, identity, req.RequesterID); err != nil {
			s.fail(c, env.Op, err)
			return
		}
		s.emit(c, models.EventFriendRequestRejected, models.FriendRequestRejected{RequesterID: req.RequesterID})

	case *removeFriendRequest:
		if err := s.Friends.RemoveFriend(ctx, identity, req.FriendID); err != nil {
			s.fail(c, env.Op, err)
			return
		}
		s.emit(c, models.EventFriendRemoved, models.FriendRemoved{UserID: req.FriendID})

	case *createTeamRequest:
		if req.UserID != identity.UserID {
			s.fail(c, env.Op, services.ErrUnauthorized)
			return
		}
		team, err := s.Teams.CreateTeam(identity, req.Mode)
		if err != nil {
			s.fail(c, env.Op, err)
			return
		}
		s.emit(c, models.EventTeamCreated, team)

	case *sendTeamInviteRequest:
		if err := s.Teams.SendInvite(identity, req.ReceiverID, req.TeamID); err != nil {
			s.fail(c, env.Op, err)
			return
		}
		s.emit(c, models.EventTeamInviteSent, models.TeamInviteResponse{TeamID: req.TeamID, UserID: req.ReceiverID})

	case *respondTeamInviteRequest:
		if err := s.Teams.RespondInvite(identity, req.TeamID, req.Accepted); err != nil {
			s.fail(c, env.Op, err)
		}

	case *updateReadyStatusRequest:
		if err := s.Teams.UpdateReady(identity.UserID, req.Ready); err != nil {
			s.fail(c, env.Op, err)
		}

	case *leaveTeamRequest:
		if err := s.Teams.LeaveTeam(identity.UserID); err != nil {
			s.fail(c, env.Op, err)
			return
		}
		s.emit(c, models.EventTeamLeft, struct{}{})

	case *sendTeamMessageRequest:
		if err := s.Teams.SendTeamMessage(identity, req.Text, req.Timestamp); err != nil {
			s.fail(c, env.Op, err)
		}

	case *logoutRequest:
		// Same path as a connection drop; the disconnect reconciler then
		// no-ops because the presence entry is already gone.
		s.reconcile(c.Id())
		s.emit(c, models.EventLoggedOut, struct{}{})
	}
}

func (s *Server) fail(c *gosocketio.Channel, op string, err error) {
	code := services.ErrorCode(err)
	if code == models.CodeInternal {
		log.Printf("❌ %s failed for connection %s: %v", op, c.Id(), err)
	}
	s.emitError(c, op, code, err.Error())
}

func (s *Server) emitError(c *gosocketio.Channel, op, code, message string) {
	if err := c.Emit(models.EventError, models.ErrorEvent{Op: op, Code: code, Message: message}); err != nil {
		log.Printf("⚠️ Failed to emit error event to %s: %v", c.Id(), err)
	}
}

func (s *Server) emit(c *gosocketio.Channel, event string, payload interface{}) {
	if err := c.Emit(event, payload); err != nil {
		log.Printf("⚠️ Failed to emit %s to %s: %v", event, c.Id(), err)
	}
}
