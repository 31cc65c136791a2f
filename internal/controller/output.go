package controller

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/service/room"
)

type createdOutput struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
}

type joinedOutput struct {
	Type     string           `json:"type"`
	Filename *string          `json:"filename"`
	State    room.PlayerState `json:"state"`
}

type userListOutput struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type videoUpdateOutput struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
}

type videoControlOutput struct {
	Type    string  `json:"type"`
	Action  string  `json:"action"`
	Time    float64 `json:"time"`
	Playing bool    `json:"playing"`
}

type hostLeftOutput struct {
	Type string `json:"type"`
}

// sendTo delivers one message to one connection, fire-and-forget.
func (c *controller) sendTo(ctx context.Context, conn *websocket.Conn, output any) {
	msg, err := json.Marshal(output)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to marshal output", "error", err)
		return
	}

	s, ok := c.senders.get(conn)
	if !ok {
		c.logger.DebugContext(ctx, "no sender for connection, dropping message")
		return
	}
	s.send(msg)
}

// broadcast fans one message out to every given connection. Delivery is
// best-effort: a dead or slow recipient never aborts delivery to the rest.
func (c *controller) broadcast(ctx context.Context, conns []*websocket.Conn, output any) {
	msg, err := json.Marshal(output)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to marshal output", "error", err)
		return
	}

	for _, conn := range conns {
		s, ok := c.senders.get(conn)
		if !ok {
			c.logger.DebugContext(ctx, "no sender for connection, skipping recipient")
			continue
		}
		s.send(msg)
	}
}
