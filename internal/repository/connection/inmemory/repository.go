package inmemory

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/repository/connection"
)

type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	mu       sync.RWMutex
	logger   *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
		logger:   logger,
	}
}

func (r *repo) Add(conn *websocket.Conn, sessionID string) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "sessionId", sessionID)
	if r.connList[conn] != "" || r.idList[sessionID] != nil {
		r.logger.Debug(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = sessionID
	r.idList[sessionID] = conn

	return nil
}

func (r *repo) RemoveByConn(conn *websocket.Conn) error {
	funcName := "connection.inmemory.RemoveByConn"
	r.mu.Lock()
	defer r.mu.Unlock()

	sessionID, ok := r.connList[conn]
	if !ok {
		r.logger.Debug(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, sessionID)

	r.logger.Debug(funcName, "sessionId", sessionID)
	return nil
}

func (r *repo) RemoveBySessionID(sessionID string) error {
	funcName := "connection.inmemory.RemoveBySessionID"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "sessionId", sessionID)
	conn, ok := r.idList[sessionID]
	if !ok {
		r.logger.Debug(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, sessionID)

	return nil
}

func (r *repo) GetSessionID(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return sessionID, nil
}

func (r *repo) GetConn(sessionID string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[sessionID]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}
