package socket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequestRoutesToTypedPayloads(t *testing.T) {
	tests := []struct {
		op    string
		data  string
		check func(t *testing.T, req request)
	}{
		{
			op:   OpRegisterPresence,
			data: `{"userId":"alice"}`,
			check: func(t *testing.T, req request) {
				assert.Equal(t, "alice", req.(*registerPresenceRequest).UserID)
			},
		},
		{
			op:   OpPushStatus,
			data: `{"userId":"alice","activity":"in-game"}`,
			check: func(t *testing.T, req request) {
				assert.Equal(t, "in-game", req.(*pushStatusRequest).Activity)
			},
		},
		{
			op:   OpSendFriendRequest,
			data: `{"username":"name-bob","tag":"0001"}`,
			check: func(t *testing.T, req request) {
				r := req.(*sendFriendRequestRequest)
				assert.Equal(t, "name-bob", r.Username)
				assert.Equal(t, "0001", r.Tag)
			},
		},
		{
			op:   OpCreateTeam,
			data: `{"userId":"alice","mode":"team3v3"}`,
			check: func(t *testing.T, req request) {
				assert.Equal(t, "team3v3", req.(*createTeamRequest).Mode)
			},
		},
		{
			op:   OpRespondTeamInvite,
			data: `{"teamId":"t1","accepted":true}`,
			check: func(t *testing.T, req request) {
				r := req.(*respondTeamInviteRequest)
				assert.Equal(t, "t1", r.TeamID)
				assert.True(t, r.Accepted)
			},
		},
		{
			op:   OpLeaveTeam,
			data: ``,
			check: func(t *testing.T, req request) {
				assert.IsType(t, &leaveTeamRequest{}, req)
			},
		},
		{
			op:   OpLogout,
			data: `{}`,
			check: func(t *testing.T, req request) {
				assert.IsType(t, &logoutRequest{}, req)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.op, func(t *testing.T) {
			req, err := decodeRequest(tc.op, json.RawMessage(tc.data))
			require.NoError(t, err)
			tc.check(t, req)
		})
	}
}

func TestDecodeRequestUnknownOp(t *testing.T) {
	_, err := decodeRequest("start_match", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")
}

func TestDecodeRequestInvalidPayload(t *testing.T) {
	_, err := decodeRequest(OpCreateTeam, json.RawMessage(`{"mode":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payload")
}

func TestEnvelopeDecoding(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"op":"update_ready_status","data":{"ready":true}}`), &env))
	assert.Equal(t, OpUpdateReadyStatus, env.Op)

	req, err := decodeRequest(env.Op, env.Data)
	require.NoError(t, err)
	assert.True(t, req.(*updateReadyStatusRequest).Ready)
}
