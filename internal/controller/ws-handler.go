package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/service/room"
	"github.com/cinesync/server/pkg/ctxlogger"
)

func (c *controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	sess := &session{id: uuid.NewString()}
	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("session_id", sess.id))
	ctx = context.WithValue(ctx, sessionCtxKey, sess)

	if err := c.roomService.Connect(ctx, &room.ConnectParams{
		Conn:      conn,
		SessionID: sess.id,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to register connection", "error", err)
		conn.Close()
		return
	}
	c.senders.add(conn)

	defer c.disconnect(ctx, conn, sess)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}

	c.logger.InfoContext(ctx, "session disconnected", "username", sess.username, "roomCode", sess.roomCode)
}

func (c *controller) disconnect(ctx context.Context, conn *websocket.Conn, sess *session) {
	resp, err := c.roomService.Disconnect(ctx, &room.DisconnectParams{
		SessionID: sess.id,
		RoomCode:  sess.roomCode,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect session", "error", err)
		c.senders.remove(conn)
		return
	}

	switch resp.Outcome {
	case room.OutcomeHostLeft:
		c.broadcast(ctx, resp.Conns, &hostLeftOutput{Type: "hostLeft"})
	case room.OutcomeMemberLeft:
		c.broadcast(ctx, resp.Conns, &userListOutput{Type: "userList", Users: resp.Usernames})
	}

	c.senders.remove(conn)
}

type createInput struct {
	Username string `json:"username" validate:"required,max=32"`
}

func (c *controller) handleCreate(ctx context.Context, conn *websocket.Conn, raw json.RawMessage) {
	sess := c.sessionFromCtx(ctx)
	if sess.bound() {
		c.logger.DebugContext(ctx, "create ignored, session already bound", "roomCode", sess.roomCode)
		return
	}

	var input createInput
	if err := json.Unmarshal(raw, &input); err != nil {
		c.logger.DebugContext(ctx, "dropping undecodable create payload", "error", err)
		return
	}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(ctx, "dropping invalid create payload", "errors", validationErrors)
		return
	}

	resp, err := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		SessionID: sess.id,
		Username:  input.Username,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to create room", "error", err)
		return
	}

	sess.username = input.Username
	sess.roomCode = resp.RoomCode
	c.logger.InfoContext(ctx, "room created", "roomCode", resp.RoomCode, "username", input.Username)

	c.sendTo(ctx, conn, &createdOutput{Type: "created", RoomCode: resp.RoomCode})
}

type joinInput struct {
	RoomCode string `json:"roomCode" validate:"required,len=6,hexadecimal"`
	Username string `json:"username" validate:"required,max=32"`
}

func (c *controller) handleJoin(ctx context.Context, conn *websocket.Conn, raw json.RawMessage) {
	sess := c.sessionFromCtx(ctx)
	if sess.bound() {
		c.logger.DebugContext(ctx, "join ignored, session already bound", "roomCode", sess.roomCode)
		return
	}

	var input joinInput
	if err := json.Unmarshal(raw, &input); err != nil {
		c.logger.DebugContext(ctx, "dropping undecodable join payload", "error", err)
		return
	}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(ctx, "dropping invalid join payload", "errors", validationErrors)
		return
	}

	resp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		SessionID: sess.id,
		Username:  input.Username,
		RoomCode:  input.RoomCode,
	})
	if err != nil {
		// The joiner observes silence either way: there is no protocol
		// surface to tell a bad code from a room that is already gone.
		c.logger.DebugContext(ctx, "failed to join room", "roomCode", input.RoomCode, "error", err)
		return
	}

	sess.username = input.Username
	sess.roomCode = input.RoomCode
	c.logger.InfoContext(ctx, "member joined", "roomCode", input.RoomCode, "username", input.Username)

	c.broadcast(ctx, resp.Conns, &userListOutput{Type: "userList", Users: resp.Usernames})
	c.sendTo(ctx, conn, &joinedOutput{Type: "joined", Filename: resp.Filename, State: resp.State})
}

type videoSelectedInput struct {
	Filename string `json:"filename" validate:"required"`
}

func (c *controller) handleVideoSelected(ctx context.Context, conn *websocket.Conn, raw json.RawMessage) {
	sess := c.sessionFromCtx(ctx)
	if !sess.bound() {
		c.logger.DebugContext(ctx, "videoSelected ignored, session not bound")
		return
	}

	var input videoSelectedInput
	if err := json.Unmarshal(raw, &input); err != nil {
		c.logger.DebugContext(ctx, "dropping undecodable videoSelected payload", "error", err)
		return
	}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(ctx, "dropping invalid videoSelected payload", "errors", validationErrors)
		return
	}

	resp, err := c.roomService.SelectVideo(ctx, &room.SelectVideoParams{
		SessionID: sess.id,
		RoomCode:  sess.roomCode,
		Filename:  input.Filename,
	})
	if err != nil {
		c.logger.DebugContext(ctx, "failed to select video", "error", err)
		return
	}

	c.broadcast(ctx, resp.Conns, &videoUpdateOutput{Type: "videoUpdate", Filename: input.Filename})
}

type videoControlInput struct {
	Action string  `json:"action" validate:"required"`
	Time   float64 `json:"time"`
}

func (c *controller) handleVideoControl(ctx context.Context, conn *websocket.Conn, raw json.RawMessage) {
	sess := c.sessionFromCtx(ctx)
	if !sess.bound() {
		c.logger.DebugContext(ctx, "videoControl ignored, session not bound")
		return
	}

	var input videoControlInput
	if err := json.Unmarshal(raw, &input); err != nil {
		c.logger.DebugContext(ctx, "dropping undecodable videoControl payload", "error", err)
		return
	}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(ctx, "dropping invalid videoControl payload", "errors", validationErrors)
		return
	}

	resp, err := c.roomService.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		SessionID: sess.id,
		RoomCode:  sess.roomCode,
		Action:    input.Action,
		Time:      input.Time,
	})
	if err != nil {
		c.logger.DebugContext(ctx, "failed to update player state", "error", err)
		return
	}
	if !resp.Forwarded {
		return
	}

	c.broadcast(ctx, resp.Conns, &videoControlOutput{
		Type:    "videoControl",
		Action:  input.Action,
		Time:    resp.State.Time,
		Playing: resp.State.Playing,
	})
}
