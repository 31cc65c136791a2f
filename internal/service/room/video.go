package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/repository"
)

type SelectVideoParams struct {
	SessionID string
	RoomCode  string
	Filename  string
}

type SelectVideoResponse struct {
	// Conns covers every member except the sender.
	Conns []*websocket.Conn
}

func (s *service) SelectVideo(ctx context.Context, params *SelectVideoParams) (SelectVideoResponse, error) {
	room, err := s.roomRepo.UpdateVideo(ctx, &repository.UpdateVideoParams{
		Code:     params.RoomCode,
		Filename: params.Filename,
	})
	if errors.Is(err, repository.ErrRoomNotFound) {
		return SelectVideoResponse{}, ErrRoomNotFound
	}
	if err != nil {
		return SelectVideoResponse{}, fmt.Errorf("failed to update video: %w", err)
	}

	return SelectVideoResponse{
		Conns: s.connsFor(ctx, room.Members, params.SessionID),
	}, nil
}

type UpdatePlayerStateParams struct {
	SessionID string
	RoomCode  string
	Action    string
	Time      float64
}

type UpdatePlayerStateResponse struct {
	// Forwarded is false when the update was recorded but coalesced; the
	// caller must not fan it out.
	Forwarded bool
	State     PlayerState
	// Conns covers every member except the sender.
	Conns []*websocket.Conn
}

// UpdatePlayerState applies a playback control to the room's authoritative
// snapshot. Play and pause derive the playing flag and always forward; any
// other action keeps the flag and is forwarded at most once per sync
// interval. The snapshot itself is updated regardless, so late joiners see
// the freshest time.
func (s *service) UpdatePlayerState(ctx context.Context, params *UpdatePlayerStateParams) (UpdatePlayerStateResponse, error) {
	var playing *bool
	authoritative := false
	switch params.Action {
	case ActionPlay:
		v := true
		playing = &v
		authoritative = true
	case ActionPause:
		v := false
		playing = &v
		authoritative = true
	}

	room, forwarded, err := s.roomRepo.UpdatePlayerState(ctx, &repository.UpdatePlayerStateParams{
		Code:          params.RoomCode,
		Playing:       playing,
		Time:          params.Time,
		Authoritative: authoritative,
		Window:        s.syncInterval,
		Now:           time.Now(),
	})
	if errors.Is(err, repository.ErrRoomNotFound) {
		return UpdatePlayerStateResponse{}, ErrRoomNotFound
	}
	if err != nil {
		return UpdatePlayerStateResponse{}, fmt.Errorf("failed to update player state: %w", err)
	}

	resp := UpdatePlayerStateResponse{
		Forwarded: forwarded,
		State:     PlayerState(room.State),
	}
	if forwarded {
		resp.Conns = s.connsFor(ctx, room.Members, params.SessionID)
	}

	return resp, nil
}
