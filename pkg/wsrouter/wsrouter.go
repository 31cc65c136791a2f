package wsrouter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type string `json:"type"`
}

// HandlerFunc receives the full inbound document; the type discriminator has
// already been matched.
type HandlerFunc func(ctx context.Context, conn *websocket.Conn, raw json.RawMessage)

type WSRouter struct {
	routes map[string]HandlerFunc
	logger *slog.Logger
}

func New(logger *slog.Logger) *WSRouter {
	return &WSRouter{
		routes: make(map[string]HandlerFunc),
		logger: logger,
	}
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// ServeConn reads frames until the connection closes. A frame that does not
// decode, or that carries an unknown type, is dropped without ending the
// loop; only a transport error terminates it.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			r.logger.DebugContext(ctx, "dropping undecodable frame", "error", err)
			continue
		}

		handler, ok := r.routes[env.Type]
		if !ok {
			r.logger.DebugContext(ctx, "dropping frame with unknown type", "type", env.Type)
			continue
		}

		handler(ctx, conn, raw)
	}
}
