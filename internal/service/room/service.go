package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/repository"
	"github.com/cinesync/server/pkg/roomcode"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrNoFreeRoomCode = errors.New("no free room code")
)

const (
	ActionPlay  = "play"
	ActionPause = "pause"
)

type iRoomRepo interface {
	CreateRoom(context.Context, *repository.CreateRoomParams) error
	GetRoom(context.Context, string) (repository.Room, error)
	RemoveRoom(context.Context, string) error
	AddMember(context.Context, *repository.AddMemberParams) (repository.Room, error)
	RemoveMember(context.Context, *repository.RemoveMemberParams) (repository.RemoveMemberResult, error)
	UpdateVideo(context.Context, *repository.UpdateVideoParams) (repository.Room, error)
	UpdatePlayerState(context.Context, *repository.UpdatePlayerStateParams) (repository.Room, bool, error)
}

type iConnRepo interface {
	Add(*websocket.Conn, string) error
	RemoveByConn(*websocket.Conn) error
	RemoveBySessionID(string) error
	GetConn(string) (*websocket.Conn, error)
	GetSessionID(*websocket.Conn) (string, error)
}

type iCodeGenerator interface {
	Generate() (string, error)
}

type Config struct {
	// SyncInterval is the minimum spacing between forwarded
	// non-authoritative playback updates.
	SyncInterval time.Duration
	// CodeRetryLimit bounds regeneration when a generated room code
	// collides with a live room.
	CodeRetryLimit int
}

type service struct {
	roomRepo       iRoomRepo
	connRepo       iConnRepo
	generator      iCodeGenerator
	syncInterval   time.Duration
	codeRetryLimit int
	logger         *slog.Logger
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, cfg *Config, logger *slog.Logger) *service {
	return &service{
		roomRepo:       roomRepo,
		connRepo:       connRepo,
		generator:      roomcode.NewGenerator(),
		syncInterval:   cfg.SyncInterval,
		codeRetryLimit: cfg.CodeRetryLimit,
		logger:         logger,
	}
}
