package room

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	connInmemory "github.com/cinesync/server/internal/repository/connection/inmemory"
	roomInmemory "github.com/cinesync/server/internal/repository/room/inmemory"
)

func newTestService(t *testing.T, syncInterval time.Duration) *service {
	t.Helper()
	logger := slog.Default()
	return NewService(roomInmemory.NewRepo(logger), connInmemory.NewRepo(logger), &Config{
		SyncInterval:   syncInterval,
		CodeRetryLimit: 3,
	}, logger)
}

func connect(t *testing.T, s *service, sessionID string) *websocket.Conn {
	t.Helper()
	conn := &websocket.Conn{}
	require.NoError(t, s.Connect(context.Background(), &ConnectParams{Conn: conn, SessionID: sessionID}))
	return conn
}

func TestCreateAndJoinRoom(t *testing.T) {
	s := newTestService(t, 100*time.Millisecond)
	ctx := context.Background()

	hostConn := connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{SessionID: "host", Username: "A"})
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{6}$`, createResp.RoomCode)

	guestConn := connect(t, s, "guest")
	joinResp, err := s.JoinRoom(ctx, &JoinRoomParams{SessionID: "guest", Username: "B", RoomCode: createResp.RoomCode})
	require.NoError(t, err)
	assert.Nil(t, joinResp.Filename, "no video selected yet")
	assert.Equal(t, PlayerState{Playing: false, Time: 0}, joinResp.State)
	assert.Equal(t, []string{"A", "B"}, joinResp.Usernames, "userList is join-ordered")
	assert.ElementsMatch(t, []*websocket.Conn{hostConn, guestConn}, joinResp.Conns, "userList goes to every member, joiner included")
}

func TestJoinUnknownRoom(t *testing.T) {
	s := newTestService(t, 100*time.Millisecond)

	connect(t, s, "guest")
	_, err := s.JoinRoom(context.Background(), &JoinRoomParams{SessionID: "guest", Username: "B", RoomCode: "abc123"})
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSelectVideoExcludesSender(t *testing.T) {
	s := newTestService(t, 100*time.Millisecond)
	ctx := context.Background()

	connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{SessionID: "host", Username: "A"})
	require.NoError(t, err)

	guestConn := connect(t, s, "guest")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionID: "guest", Username: "B", RoomCode: createResp.RoomCode})
	require.NoError(t, err)

	selectResp, err := s.SelectVideo(ctx, &SelectVideoParams{SessionID: "host", RoomCode: createResp.RoomCode, Filename: "movie.mp4"})
	require.NoError(t, err)
	assert.Equal(t, []*websocket.Conn{guestConn}, selectResp.Conns)

	// A late joiner sees the selection.
	connect(t, s, "late")
	lateResp, err := s.JoinRoom(ctx, &JoinRoomParams{SessionID: "late", Username: "C", RoomCode: createResp.RoomCode})
	require.NoError(t, err)
	require.NotNil(t, lateResp.Filename)
	assert.Equal(t, "movie.mp4", *lateResp.Filename)
}

func TestUpdatePlayerStateThrottle(t *testing.T) {
	// A window this wide suppresses every non-authoritative forward after
	// the first, which makes the coalescing observable without sleeping.
	s := newTestService(t, time.Hour)
	ctx := context.Background()

	connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{SessionID: "host", Username: "A"})
	require.NoError(t, err)
	guestConn := connect(t, s, "guest")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionID: "guest", Username: "B", RoomCode: createResp.RoomCode})
	require.NoError(t, err)

	// First seek is forwarded (nothing was forwarded before).
	seek1, err := s.UpdatePlayerState(ctx, &UpdatePlayerStateParams{SessionID: "host", RoomCode: createResp.RoomCode, Action: "timeSync", Time: 12.34})
	require.NoError(t, err)
	assert.True(t, seek1.Forwarded)
	assert.Equal(t, 12.3, seek1.State.Time, "stored time is rounded to 0.1s")
	assert.False(t, seek1.State.Playing, "non-edge action leaves the playing flag alone")
	assert.Equal(t, []*websocket.Conn{guestConn}, seek1.Conns)

	// Second seek inside the window is recorded but not forwarded.
	seek2, err := s.UpdatePlayerState(ctx, &UpdatePlayerStateParams{SessionID: "host", RoomCode: createResp.RoomCode, Action: "timeSync", Time: 15})
	require.NoError(t, err)
	assert.False(t, seek2.Forwarded)
	assert.Equal(t, 15.0, seek2.State.Time, "coalesced update still lands in the snapshot")
	assert.Empty(t, seek2.Conns)

	// Play and pause bypass the window.
	play, err := s.UpdatePlayerState(ctx, &UpdatePlayerStateParams{SessionID: "host", RoomCode: createResp.RoomCode, Action: ActionPlay, Time: 15})
	require.NoError(t, err)
	assert.True(t, play.Forwarded)
	assert.True(t, play.State.Playing)

	pause, err := s.UpdatePlayerState(ctx, &UpdatePlayerStateParams{SessionID: "host", RoomCode: createResp.RoomCode, Action: ActionPause, Time: 16})
	require.NoError(t, err)
	assert.True(t, pause.Forwarded)
	assert.False(t, pause.State.Playing)

	// The late joiner observes the freshest snapshot even though the last
	// seek was never forwarded.
	connect(t, s, "late")
	lateResp, err := s.JoinRoom(ctx, &JoinRoomParams{SessionID: "late", Username: "C", RoomCode: createResp.RoomCode})
	require.NoError(t, err)
	assert.Equal(t, PlayerState{Playing: false, Time: 16}, lateResp.State)
}

func TestDisconnectSoleMemberDeletesRoom(t *testing.T) {
	s := newTestService(t, 100*time.Millisecond)
	ctx := context.Background()

	connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{SessionID: "host", Username: "A"})
	require.NoError(t, err)

	resp, err := s.Disconnect(ctx, &DisconnectParams{SessionID: "host", RoomCode: createResp.RoomCode})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRoomNowEmpty, resp.Outcome)
	assert.Empty(t, resp.Conns)

	// The code now behaves as unknown.
	connect(t, s, "guest")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionID: "guest", Username: "B", RoomCode: createResp.RoomCode})
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestDisconnectHostTerminatesRoom(t *testing.T) {
	s := newTestService(t, 100*time.Millisecond)
	ctx := context.Background()

	connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{SessionID: "host", Username: "A"})
	require.NoError(t, err)
	guestConn := connect(t, s, "guest")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionID: "guest", Username: "B", RoomCode: createResp.RoomCode})
	require.NoError(t, err)

	resp, err := s.Disconnect(ctx, &DisconnectParams{SessionID: "host", RoomCode: createResp.RoomCode})
	require.NoError(t, err)
	assert.Equal(t, OutcomeHostLeft, resp.Outcome)
	assert.Equal(t, []*websocket.Conn{guestConn}, resp.Conns, "remaining members get the hostLeft broadcast")

	connect(t, s, "other")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionID: "other", Username: "C", RoomCode: createResp.RoomCode})
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestDisconnectMemberKeepsRoom(t *testing.T) {
	s := newTestService(t, 100*time.Millisecond)
	ctx := context.Background()

	hostConn := connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{SessionID: "host", Username: "A"})
	require.NoError(t, err)
	connect(t, s, "guest")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionID: "guest", Username: "B", RoomCode: createResp.RoomCode})
	require.NoError(t, err)

	resp, err := s.Disconnect(ctx, &DisconnectParams{SessionID: "guest", RoomCode: createResp.RoomCode})
	require.NoError(t, err)
	assert.Equal(t, OutcomeMemberLeft, resp.Outcome)
	assert.Equal(t, []string{"A"}, resp.Usernames)
	assert.Equal(t, []*websocket.Conn{hostConn}, resp.Conns)

	// Room is still joinable.
	connect(t, s, "other")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{SessionID: "other", Username: "C", RoomCode: createResp.RoomCode})
	require.NoError(t, err)
}

func TestDisconnectUnbound(t *testing.T) {
	s := newTestService(t, 100*time.Millisecond)

	connect(t, s, "drifter")
	resp, err := s.Disconnect(context.Background(), &DisconnectParams{SessionID: "drifter", RoomCode: ""})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, resp.Outcome)
}

func TestCreateRoomRegeneratesOnCollision(t *testing.T) {
	s := newTestService(t, 100*time.Millisecond)
	ctx := context.Background()

	taken, err := s.generator.Generate()
	require.NoError(t, err)
	s.generator = &stubGenerator{codes: []string{taken, taken, "fffff0"}}

	connect(t, s, "first")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{SessionID: "first", Username: "A"})
	require.NoError(t, err)
	assert.Equal(t, taken, createResp.RoomCode)

	connect(t, s, "second")
	createResp2, err := s.CreateRoom(ctx, &CreateRoomParams{SessionID: "second", Username: "B"})
	require.NoError(t, err)
	assert.Equal(t, "fffff0", createResp2.RoomCode, "colliding code is regenerated")
}

type stubGenerator struct {
	codes []string
	i     int
}

func (g *stubGenerator) Generate() (string, error) {
	code := g.codes[g.i%len(g.codes)]
	g.i++
	return code, nil
}
