package controller

import (
	"sync"

	"github.com/gorilla/websocket"
)

const sendBufferSize = 32

// sender serializes writes to one connection through a buffered channel and
// a single writer goroutine. Enqueueing never blocks: when the buffer is
// full the frame is dropped, so a stalled peer cannot hold up fan-out to the
// rest of its room.
type sender struct {
	conn   *websocket.Conn
	ch     chan []byte
	mu     sync.Mutex
	closed bool
}

func newSender(conn *websocket.Conn) *sender {
	s := &sender{
		conn: conn,
		ch:   make(chan []byte, sendBufferSize),
	}
	go s.writePump()

	return s
}

func (s *sender) writePump() {
	for msg := range s.ch {
		// Keep draining after a failed write so pending frames are
		// discarded instead of piling up until close.
		s.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *sender) send(msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.ch <- msg:
	default:
	}
}

func (s *sender) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

type senderRegistry struct {
	senders map[*websocket.Conn]*sender
	mu      sync.RWMutex
}

func newSenderRegistry() *senderRegistry {
	return &senderRegistry{senders: make(map[*websocket.Conn]*sender)}
}

func (r *senderRegistry) add(conn *websocket.Conn) *sender {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := newSender(conn)
	r.senders[conn] = s

	return s
}

func (r *senderRegistry) get(conn *websocket.Conn) (*sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.senders[conn]
	return s, ok
}

func (r *senderRegistry) remove(conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.senders[conn]; ok {
		s.close()
		delete(r.senders, conn)
	}
}
