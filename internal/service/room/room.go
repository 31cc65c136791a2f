package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/repository"
)

type ConnectParams struct {
	Conn      *websocket.Conn
	SessionID string
}

func (s *service) Connect(ctx context.Context, params *ConnectParams) error {
	if err := s.connRepo.Add(params.Conn, params.SessionID); err != nil {
		return fmt.Errorf("failed to register connection: %w", err)
	}

	return nil
}

type CreateRoomParams struct {
	SessionID string
	Username  string
}

type CreateRoomResponse struct {
	RoomCode string
}

// CreateRoom allocates a code and creates the room with the session as host
// and sole member. The generator does not guarantee uniqueness, so a
// colliding code is regenerated a bounded number of times.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	for attempt := 0; attempt < s.codeRetryLimit; attempt++ {
		code, err := s.generator.Generate()
		if err != nil {
			return CreateRoomResponse{}, fmt.Errorf("failed to generate room code: %w", err)
		}

		err = s.roomRepo.CreateRoom(ctx, &repository.CreateRoomParams{
			Code:         code,
			HostID:       params.SessionID,
			HostUsername: params.Username,
		})
		if errors.Is(err, repository.ErrRoomAlreadyExists) {
			s.logger.InfoContext(ctx, "room code collision, regenerating", "code", code)
			continue
		}
		if err != nil {
			return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
		}

		return CreateRoomResponse{RoomCode: code}, nil
	}

	return CreateRoomResponse{}, ErrNoFreeRoomCode
}

type JoinRoomParams struct {
	SessionID string
	Username  string
	RoomCode  string
}

type JoinRoomResponse struct {
	Filename  *string
	State     PlayerState
	Usernames []string
	// Conns covers every member, the joiner included.
	Conns []*websocket.Conn
}

func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	room, err := s.roomRepo.AddMember(ctx, &repository.AddMemberParams{
		Code:      params.RoomCode,
		SessionID: params.SessionID,
		Username:  params.Username,
	})
	if errors.Is(err, repository.ErrRoomNotFound) {
		return JoinRoomResponse{}, ErrRoomNotFound
	}
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to join room: %w", err)
	}

	return JoinRoomResponse{
		Filename:  room.Filename,
		State:     PlayerState(room.State),
		Usernames: usernames(room.Members),
		Conns:     s.connsFor(ctx, room.Members, ""),
	}, nil
}
