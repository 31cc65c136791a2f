package inmemory

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cinesync/server/internal/repository"
)

type room struct {
	mu              sync.Mutex
	code            string
	hostID          string
	members         []repository.Member
	filename        *string
	state           repository.PlayerState
	lastForwardedAt time.Time
}

// snapshot must be called with r.mu held.
func (r *room) snapshot() repository.Room {
	members := make([]repository.Member, len(r.members))
	copy(members, r.members)

	return repository.Room{
		Code:     r.code,
		HostID:   r.hostID,
		Members:  members,
		Filename: r.filename,
		State:    r.state,
	}
}

type repo struct {
	rooms  map[string]*room
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		rooms:  make(map[string]*room),
		logger: logger,
	}
}

func (r *repo) CreateRoom(ctx context.Context, params *repository.CreateRoomParams) error {
	funcName := "room.inmemory.CreateRoom"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.DebugContext(ctx, funcName, "code", params.Code)
	if _, ok := r.rooms[params.Code]; ok {
		r.logger.DebugContext(ctx, funcName, "error", repository.ErrRoomAlreadyExists)
		return repository.ErrRoomAlreadyExists
	}

	r.rooms[params.Code] = &room{
		code:   params.Code,
		hostID: params.HostID,
		members: []repository.Member{{
			SessionID: params.HostID,
			Username:  params.HostUsername,
		}},
		state: repository.PlayerState{Playing: false, Time: 0},
	}

	return nil
}

func (r *repo) GetRoom(ctx context.Context, code string) (repository.Room, error) {
	funcName := "room.inmemory.GetRoom"
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	if !ok {
		r.logger.DebugContext(ctx, funcName, "code", code, "error", repository.ErrRoomNotFound)
		return repository.Room{}, repository.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	return room.snapshot(), nil
}

// RemoveRoom is idempotent: removing an absent room is not an error.
func (r *repo) RemoveRoom(ctx context.Context, code string) error {
	funcName := "room.inmemory.RemoveRoom"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.DebugContext(ctx, funcName, "code", code)
	delete(r.rooms, code)

	return nil
}

func (r *repo) AddMember(ctx context.Context, params *repository.AddMemberParams) (repository.Room, error) {
	funcName := "room.inmemory.AddMember"
	r.mu.RLock()
	defer r.mu.RUnlock()

	r.logger.DebugContext(ctx, funcName, "code", params.Code, "sessionId", params.SessionID)
	room, ok := r.rooms[params.Code]
	if !ok {
		r.logger.DebugContext(ctx, funcName, "error", repository.ErrRoomNotFound)
		return repository.Room{}, repository.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	for _, m := range room.members {
		if m.SessionID == params.SessionID {
			return room.snapshot(), nil
		}
	}

	room.members = append(room.members, repository.Member{
		SessionID: params.SessionID,
		Username:  params.Username,
	})

	return room.snapshot(), nil
}

// RemoveMember removes the member and, atomically with the removal, deletes
// the room when it is now empty or when the departing member was the host.
func (r *repo) RemoveMember(ctx context.Context, params *repository.RemoveMemberParams) (repository.RemoveMemberResult, error) {
	funcName := "room.inmemory.RemoveMember"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.DebugContext(ctx, funcName, "code", params.Code, "sessionId", params.SessionID)
	room, ok := r.rooms[params.Code]
	if !ok {
		r.logger.DebugContext(ctx, funcName, "error", repository.ErrRoomNotFound)
		return repository.RemoveMemberResult{}, repository.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	found := false
	remaining := make([]repository.Member, 0, len(room.members))
	for _, m := range room.members {
		if m.SessionID == params.SessionID {
			found = true
			continue
		}
		remaining = append(remaining, m)
	}
	if !found {
		r.logger.DebugContext(ctx, funcName, "error", repository.ErrMemberNotFound)
		return repository.RemoveMemberResult{}, repository.ErrMemberNotFound
	}
	room.members = remaining

	result := repository.RemoveMemberResult{
		Outcome: repository.OutcomeMemberLeft,
		Members: make([]repository.Member, len(remaining)),
	}
	copy(result.Members, remaining)

	switch {
	case len(remaining) == 0:
		result.Outcome = repository.OutcomeRoomNowEmpty
		delete(r.rooms, params.Code)
	case params.SessionID == room.hostID:
		result.Outcome = repository.OutcomeHostLeft
		delete(r.rooms, params.Code)
	}

	return result, nil
}

func (r *repo) UpdateVideo(ctx context.Context, params *repository.UpdateVideoParams) (repository.Room, error) {
	funcName := "room.inmemory.UpdateVideo"
	r.mu.RLock()
	defer r.mu.RUnlock()

	r.logger.DebugContext(ctx, funcName, "code", params.Code, "filename", params.Filename)
	room, ok := r.rooms[params.Code]
	if !ok {
		r.logger.DebugContext(ctx, funcName, "error", repository.ErrRoomNotFound)
		return repository.Room{}, repository.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	filename := params.Filename
	room.filename = &filename

	return room.snapshot(), nil
}

// UpdatePlayerState mutates the playback snapshot on every call and decides,
// under the same room lock, whether this update is forwarded to the rest of
// the room. The stored time is rounded to 0.1s.
func (r *repo) UpdatePlayerState(ctx context.Context, params *repository.UpdatePlayerStateParams) (repository.Room, bool, error) {
	funcName := "room.inmemory.UpdatePlayerState"
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[params.Code]
	if !ok {
		r.logger.DebugContext(ctx, funcName, "error", repository.ErrRoomNotFound)
		return repository.Room{}, false, repository.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if params.Playing != nil {
		room.state.Playing = *params.Playing
	}
	room.state.Time = math.Round(params.Time*10) / 10

	forwarded := params.Authoritative || params.Now.Sub(room.lastForwardedAt) > params.Window
	if forwarded {
		room.lastForwardedAt = params.Now
	}

	return room.snapshot(), forwarded, nil
}
