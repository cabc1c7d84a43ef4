package models

// Event names pushed to clients. Requests arrive on the single "request"
// event; everything here flows the other way.
const (
	EventError           = "error"
	EventAuthError       = "auth_error"
	EventSessionReplaced = "session_replaced"

	EventFriendsList           = "friends_list"
	EventFriendStatusUpdate    = "friend_status_update"
	EventFriendRequestSent     = "friend_request_sent"
	EventFriendRequestReceived = "friend_request_received"
	EventFriendRequestAccepted = "friend_request_accepted"
	EventFriendRequestRejected = "friend_request_rejected"
	EventFriendRequestDeclined = "friend_request_declined"
	EventFriendAdded           = "friend_added"
	EventFriendRemoved         = "friend_removed"

	EventTeamCreated            = "team_created"
	EventTeamInviteSent         = "team_invite_sent"
	EventTeamInviteReceived     = "team_invite_received"
	EventTeamInviteAccepted     = "team_invite_accepted"
	EventTeamInviteRejected     = "team_invite_rejected"
	EventTeamMemberJoined       = "team_member_joined"
	EventTeamMemberLeft         = "team_member_left"
	EventTeamLeaderChanged      = "team_leader_changed"
	EventTeamReadyStatusUpdated = "team_ready_status_updated"
	EventTeamMessageReceived    = "team_message_received"
	EventTeamLeft               = "team_left"

	EventLoggedOut = "logged_out"
)

// ErrorEvent is the scoped error notification sent back to the originating
// connection only. Op echoes the request that failed.
type ErrorEvent struct {
	Op      string `json:"op"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type FriendStatusUpdate struct {
	UserID   string `json:"userId"`
	Status   string `json:"status"`
	Activity string `json:"activity,omitempty"`
}

type FriendRequestReceived struct {
	SenderID     string `json:"senderId"`
	SenderName   string `json:"senderName"`
	SenderTag    string `json:"senderTag"`
	SenderAvatar string `json:"senderAvatar,omitempty"`
}

type FriendRequestSent struct {
	TargetID string `json:"targetId"`
}

type FriendRequestAccepted struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type FriendAdded struct {
	Friend FriendStatus `json:"friend"`
}

type FriendRemoved struct {
	UserID string `json:"userId"`
}

type FriendRequestRejected struct {
	RequesterID string `json:"requesterId"`
}

type FriendRequestDeclined struct {
	UserID string `json:"userId"`
}

type TeamInviteReceived struct {
	TeamID      string `json:"teamId"`
	SenderID    string `json:"senderId"`
	SenderName  string `json:"senderName"`
	Mode        string `json:"mode"`
	CurrentSize int    `json:"currentSize"`
	Capacity    int    `json:"capacity"`
}

type TeamInviteResponse struct {
	TeamID   string `json:"teamId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type TeamMemberJoined struct {
	Member TeamMember `json:"member"`
	Team   Team       `json:"team"`
}

type TeamMemberLeft struct {
	UserID string `json:"userId"`
	Team   Team   `json:"team"`
}

type TeamLeaderChanged struct {
	TeamID   string `json:"teamId"`
	LeaderID string `json:"leaderId"`
}

type TeamReadyStatusUpdated struct {
	UserID string `json:"userId"`
	Ready  bool   `json:"ready"`
	Team   Team   `json:"team"`
}

type TeamMessageReceived struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
}
