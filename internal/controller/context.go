package controller

import "context"

type contextKey int

const sessionCtxKey contextKey = iota

// session is the dispatch layer's record for one live connection. It is
// written only from that connection's serve goroutine: username and roomCode
// are set once when create or join succeeds and never change afterwards.
type session struct {
	id       string
	username string
	roomCode string
}

func (s *session) bound() bool {
	return s.roomCode != ""
}

func (c *controller) sessionFromCtx(ctx context.Context) *session {
	sess, _ := ctx.Value(sessionCtxKey).(*session)
	return sess
}
