package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/repository"
)

type DisconnectParams struct {
	SessionID string
	// RoomCode is empty when the session never bound to a room.
	RoomCode string
}

type DisconnectResponse struct {
	Outcome   RemovalOutcome
	Usernames []string
	// Conns covers the remaining members.
	Conns []*websocket.Conn
}

// Disconnect releases the connection registration and runs the membership
// cleanup: an empty room is deleted, a departing host terminates the room,
// and otherwise the remaining members get a recomputed user list.
func (s *service) Disconnect(ctx context.Context, params *DisconnectParams) (DisconnectResponse, error) {
	if err := s.connRepo.RemoveBySessionID(params.SessionID); err != nil {
		s.logger.DebugContext(ctx, "connection already released", "sessionId", params.SessionID)
	}

	if params.RoomCode == "" {
		return DisconnectResponse{Outcome: OutcomeNone}, nil
	}

	result, err := s.roomRepo.RemoveMember(ctx, &repository.RemoveMemberParams{
		Code:      params.RoomCode,
		SessionID: params.SessionID,
	})
	if errors.Is(err, repository.ErrRoomNotFound) || errors.Is(err, repository.ErrMemberNotFound) {
		return DisconnectResponse{Outcome: OutcomeNone}, nil
	}
	if err != nil {
		return DisconnectResponse{}, fmt.Errorf("failed to remove member: %w", err)
	}

	resp := DisconnectResponse{
		Usernames: usernames(result.Members),
		Conns:     s.connsFor(ctx, result.Members, ""),
	}
	switch result.Outcome {
	case repository.OutcomeRoomNowEmpty:
		resp.Outcome = OutcomeRoomNowEmpty
	case repository.OutcomeHostLeft:
		resp.Outcome = OutcomeHostLeft
	default:
		resp.Outcome = OutcomeMemberLeft
	}

	return resp, nil
}
