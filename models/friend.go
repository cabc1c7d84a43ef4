package models

// FriendEdge is one direction of a symmetric friendship. Edges are always
// written in pairs so that a single Query on userId returns the full friend
// set of that user.
type FriendEdge struct {
	UserID    string `dynamodbav:"userId" json:"userId"`
	FriendID  string `dynamodbav:"friendId" json:"friendId"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// TableName returns the DynamoDB table name for friend edges
func (FriendEdge) TableName() string {
	return "Friends"
}

// FriendRequest is a pending entry in a user's friend-request inbox.
// UserID is the inbox owner (the request target), RequesterID the sender.
type FriendRequest struct {
	UserID      string `dynamodbav:"userId" json:"userId"`
	RequesterID string `dynamodbav:"requesterId" json:"requesterId"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
}

// TableName returns the DynamoDB table name for pending friend requests
func (FriendRequest) TableName() string {
	return "FriendRequests"
}

// FriendStatus is one entry of the friends-list snapshot returned to a
// caller: graph membership merged with live or last-persisted presence.
type FriendStatus struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Tag      string `json:"tag"`
	Avatar   string `json:"avatar,omitempty"`
	Status   string `json:"status"`
	Activity string `json:"activity,omitempty"`
	LastSeen string `json:"lastSeen,omitempty"`
}

// PendingRequestView is a pending inbox entry with the sender's display
// identity resolved, so the client can render it without another lookup.
type PendingRequestView struct {
	RequesterID string `json:"requesterId"`
	Username    string `json:"username"`
	Tag         string `json:"tag"`
	Avatar      string `json:"avatar,omitempty"`
}

// FriendsSnapshot is the full response to register_presence and
// get_friends_list.
type FriendsSnapshot struct {
	Friends []FriendStatus       `json:"friends"`
	Pending []PendingRequestView `json:"pending"`
}
