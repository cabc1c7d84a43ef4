package models

// UserRecord is the persisted user row in the Users table. The coordinator
// only reads identity and writes back presence status; everything else about
// the user (rewards, levels, match history) is owned elsewhere.
type UserRecord struct {
	UserID   string `dynamodbav:"userId" json:"userId"`
	Username string `dynamodbav:"username" json:"username"`
	Tag      string `dynamodbav:"tag" json:"tag"`
	Avatar   string `dynamodbav:"avatar,omitempty" json:"avatar,omitempty"`
	Status   string `dynamodbav:"status,omitempty" json:"status,omitempty"`
	Activity string `dynamodbav:"activity,omitempty" json:"activity,omitempty"`
	LastSeen string `dynamodbav:"lastSeen,omitempty" json:"lastSeen,omitempty"`
}

// Identity is the verified identity attached to a connection after the
// bearer token has been checked against the Users table.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Tag      string `json:"tag"`
	Avatar   string `json:"avatar,omitempty"`
}

// UsersTable is the DynamoDB table name for user records
const UsersTable = "Users"

// UsersHandleIndex is the GSI resolving username+tag to a user record
const UsersHandleIndex = "HandleIndex"
