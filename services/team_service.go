package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Hemdan-MK/Code-Battle-sub000/models"

	"github.com/google/uuid"
)

// Broadcaster fans an event out to every connection subscribed to a room.
type Broadcaster interface {
	BroadcastTo(room, event string, payload interface{})
}

// TeamService owns every live team and the reverse membership index. Both
// maps are guarded by the same mutex so they can never disagree: a user is
// in the index iff they occupy a member slot, and removing the last member
// deletes the team and the index entry in the same critical section.
type TeamService struct {
	Presence PresenceDirectory
	Rooms    Broadcaster

	mu         sync.Mutex
	teams      map[string]*models.Team // teamId -> team
	membership map[string]string       // userId -> teamId
}

// NewTeamService returns an empty team registry.
func NewTeamService(presence PresenceDirectory, rooms Broadcaster) *TeamService {
	return &TeamService{
		Presence:   presence,
		Rooms:      rooms,
		teams:      make(map[string]*models.Team),
		membership: make(map[string]string),
	}
}

// TeamRoom is the broadcast channel shared by a team's members.
func TeamRoom(teamID string) string {
	return "team:" + teamID
}

// CreateTeam allocates a fresh team with the caller as sole member, leader
// and ready.
func (s *TeamService) CreateTeam(identity models.Identity, mode string) (*models.Team, error) {
	if models.Capacity(mode) == 0 {
		return nil, ErrInvalidMode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.membership[identity.UserID]; ok {
		return nil, ErrAlreadyInTeam
	}

	team := &models.Team{
		ID:       uuid.New().String(),
		Mode:     mode,
		LeaderID: identity.UserID,
		Members: []models.TeamMember{{
			UserID:   identity.UserID,
			Username: identity.Username,
			Avatar:   identity.Avatar,
			Ready:    true,
		}},
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	s.teams[team.ID] = team
	s.membership[identity.UserID] = team.ID
	s.Presence.JoinRoom(identity.UserID, TeamRoom(team.ID))

	log.Printf("👥 Team %s created by %s (mode=%s)", team.ID, identity.UserID, mode)
	snapshot := copyTeam(team)
	return &snapshot, nil
}

// SendInvite pushes a live invite to the receiver. Only the leader may
// invite; invites reach live connections only and reserve no slot.
func (s *TeamService) SendInvite(sender models.Identity, receiverID, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if team.LeaderID != sender.UserID {
		return ErrUnauthorized
	}
	if _, taken := s.membership[receiverID]; taken {
		return ErrAlreadyInTeam
	}
	if len(team.Members) >= models.Capacity(team.Mode) {
		return ErrTeamFull
	}
	if !s.Presence.IsOnline(receiverID) {
		return ErrNotOnline
	}

	s.Presence.EmitToUser(receiverID, models.EventTeamInviteReceived, models.TeamInviteReceived{
		TeamID:      team.ID,
		SenderID:    sender.UserID,
		SenderName:  sender.Username,
		Mode:        team.Mode,
		CurrentSize: len(team.Members),
		Capacity:    models.Capacity(team.Mode),
	})
	return nil
}

// RespondInvite handles an accept or decline. Team state is re-validated at
// accept time: the team may have filled, dissolved, or the responder may
// have joined another team since the invite was pushed.
func (s *TeamService) RespondInvite(responder models.Identity, teamID string, accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]

	if !accepted {
		// Declines mutate nothing; the original leader just gets told.
		if ok {
			s.Presence.EmitToUser(team.LeaderID, models.EventTeamInviteRejected, models.TeamInviteResponse{
				TeamID:   teamID,
				UserID:   responder.UserID,
				Username: responder.Username,
			})
		}
		return nil
	}

	if !ok {
		return fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if _, taken := s.membership[responder.UserID]; taken {
		return ErrAlreadyInTeam
	}
	if len(team.Members) >= models.Capacity(team.Mode) {
		return ErrTeamFull
	}
	// An absent responder must not occupy a slot: the disconnect reconciler
	// unwinds team membership by presence entry, so a member added without
	// one could never be cleaned up.
	if !s.Presence.IsOnline(responder.UserID) {
		return ErrNotOnline
	}

	member := models.TeamMember{
		UserID:   responder.UserID,
		Username: responder.Username,
		Avatar:   responder.Avatar,
		Ready:    false,
	}
	team.Members = append(team.Members, member)
	s.membership[responder.UserID] = team.ID
	s.Presence.JoinRoom(responder.UserID, TeamRoom(team.ID))

	s.Rooms.BroadcastTo(TeamRoom(team.ID), models.EventTeamMemberJoined, models.TeamMemberJoined{
		Member: member,
		Team:   copyTeam(team),
	})
	s.Presence.EmitToUser(team.LeaderID, models.EventTeamInviteAccepted, models.TeamInviteResponse{
		TeamID:   team.ID,
		UserID:   responder.UserID,
		Username: responder.Username,
	})

	log.Printf("👥 %s joined team %s (%d/%d)", responder.UserID, team.ID, len(team.Members), models.Capacity(team.Mode))
	return nil
}

// UpdateReady flips the caller's ready flag and tells the team.
func (s *TeamService) UpdateReady(userID string, ready bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamID, ok := s.membership[userID]
	if !ok {
		return ErrNotInTeam
	}
	team := s.teams[teamID]

	for i := range team.Members {
		if team.Members[i].UserID == userID {
			team.Members[i].Ready = ready
			break
		}
	}

	s.Rooms.BroadcastTo(TeamRoom(team.ID), models.EventTeamReadyStatusUpdated, models.TeamReadyStatusUpdated{
		UserID: userID,
		Ready:  ready,
		Team:   copyTeam(team),
	})
	return nil
}

// LeaveTeam removes the caller from their team, transferring leadership to
// the first remaining member or dissolving the team when it empties. The
// disconnect reconciler runs this same path.
func (s *TeamService) LeaveTeam(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamID, ok := s.membership[userID]
	if !ok {
		return ErrNotInTeam
	}
	team := s.teams[teamID]

	for i := range team.Members {
		if team.Members[i].UserID == userID {
			team.Members = append(team.Members[:i], team.Members[i+1:]...)
			break
		}
	}
	delete(s.membership, userID)
	s.Presence.LeaveRoom(userID, TeamRoom(team.ID))

	if len(team.Members) == 0 {
		delete(s.teams, team.ID)
		log.Printf("👥 Team %s dissolved", team.ID)
		return nil
	}

	if team.LeaderID == userID {
		team.LeaderID = team.Members[0].UserID
		s.Rooms.BroadcastTo(TeamRoom(team.ID), models.EventTeamLeaderChanged, models.TeamLeaderChanged{
			TeamID:   team.ID,
			LeaderID: team.LeaderID,
		})
		log.Printf("👥 Team %s leadership transferred to %s", team.ID, team.LeaderID)
	}

	s.Rooms.BroadcastTo(TeamRoom(team.ID), models.EventTeamMemberLeft, models.TeamMemberLeft{
		UserID: userID,
		Team:   copyTeam(team),
	})
	return nil
}

// SendTeamMessage fans an ephemeral chat message out to the caller's team.
// Nothing is persisted.
func (s *TeamService) SendTeamMessage(sender models.Identity, text, timestamp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamID, ok := s.membership[sender.UserID]
	if !ok {
		return ErrNotInTeam
	}

	s.Rooms.BroadcastTo(TeamRoom(teamID), models.EventTeamMessageReceived, models.TeamMessageReceived{
		SenderID:   sender.UserID,
		SenderName: sender.Username,
		Text:       text,
		Timestamp:  timestamp,
	})
	return nil
}

// TeamOf returns a copy of the team the user currently belongs to.
func (s *TeamService) TeamOf(userID string) (models.Team, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamID, ok := s.membership[userID]
	if !ok {
		return models.Team{}, false
	}
	return copyTeam(s.teams[teamID]), true
}

// GetTeam returns a copy of a team by id.
func (s *TeamService) GetTeam(teamID string) (models.Team, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return models.Team{}, false
	}
	return copyTeam(team), true
}

// copyTeam snapshots a team so broadcast payloads and callers never share
// the registry's backing slice.
func copyTeam(team *models.Team) models.Team {
	snapshot := *team
	snapshot.Members = append([]models.TeamMember(nil), team.Members...)
	return snapshot
}
