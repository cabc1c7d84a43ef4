package models

// ✅ Presence statuses
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// ✅ Activities (what an online user is currently doing)
const (
	ActivityInGame    = "in-game"
	ActivityAvailable = "available"
)

// ✅ Team modes
const (
	ModeSolo    = "solo"
	ModeTeam3v3 = "team3v3"
)

// ✅ Wire error codes sent back to the offending connection only
const (
	CodeAuthError     = "AUTH_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeNotFound      = "NOT_FOUND"
	CodeAlreadyInTeam = "ALREADY_IN_TEAM"
	CodeAlreadyFriend = "ALREADY_FRIENDS"
	CodeAlreadyPend   = "ALREADY_PENDING"
	CodeTeamFull      = "TEAM_FULL"
	CodeSelfReference = "SELF_REFERENCE"
	CodeNotOnline     = "NOT_ONLINE"
	CodeNotInTeam     = "NOT_IN_TEAM"
	CodeInvalidMode   = "INVALID_MODE"
	CodeBadRequest    = "BAD_REQUEST"
	CodeInternal      = "INTERNAL"
)
