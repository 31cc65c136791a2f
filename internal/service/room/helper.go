package room

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/repository"
)

// connsFor resolves live connections for the given members, skipping
// excludeSessionID and any member whose connection is already gone. Delivery
// is best-effort; a missing connection is not an error.
func (s *service) connsFor(ctx context.Context, members []repository.Member, excludeSessionID string) []*websocket.Conn {
	conns := make([]*websocket.Conn, 0, len(members))
	for _, m := range members {
		if m.SessionID == excludeSessionID {
			continue
		}

		conn, err := s.connRepo.GetConn(m.SessionID)
		if err != nil {
			s.logger.DebugContext(ctx, "no live connection for member", "sessionId", m.SessionID)
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}

func usernames(members []repository.Member) []string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Username)
	}

	return names
}
