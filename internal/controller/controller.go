package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/service/room"
	"github.com/cinesync/server/pkg/validator"
	"github.com/cinesync/server/pkg/wsrouter"
)

type iRoomService interface {
	Connect(context.Context, *room.ConnectParams) error
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	SelectVideo(context.Context, *room.SelectVideoParams) (room.SelectVideoResponse, error)
	UpdatePlayerState(context.Context, *room.UpdatePlayerStateParams) (room.UpdatePlayerStateResponse, error)
	Disconnect(context.Context, *room.DisconnectParams) (room.DisconnectResponse, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	senders     *senderRegistry
	logger      *slog.Logger
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	c := &controller{
		roomService: roomService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		senders:  newSenderRegistry(),
		logger:   logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
