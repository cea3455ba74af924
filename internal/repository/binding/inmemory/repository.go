package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/watchparty/internal/repository/binding"
)

// member identifies one identity inside one room. The same identity may be
// present in several rooms, each through its own channel.
type member struct {
	roomId   string
	identity string
}

type repo struct {
	byMember  map[member]string
	byChannel map[string]member
	mu        sync.RWMutex
	logger    *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		byMember:  make(map[member]string),
		byChannel: make(map[string]member),
		logger:    logger,
	}
}

// Bind maps identity in roomId to channelId, replacing any earlier binding of
// either side.
func (r *repo) Bind(roomId, identity, channelId string) {
	funcName := "binding.inmemory.Bind"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "identity", identity, "channel_id", channelId, "room_id", roomId)
	m := member{roomId: roomId, identity: identity}
	if prevChannelId, ok := r.byMember[m]; ok && prevChannelId != channelId {
		delete(r.byChannel, prevChannelId)
	}
	if prev, ok := r.byChannel[channelId]; ok && prev != m && r.byMember[prev] == channelId {
		delete(r.byMember, prev)
	}

	r.byMember[m] = channelId
	r.byChannel[channelId] = m
}

func (r *repo) GetChannelId(roomId, identity string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channelId, ok := r.byMember[member{roomId: roomId, identity: identity}]
	if !ok {
		return "", binding.ErrNotFound
	}

	return channelId, nil
}

// GetIdentity resolves channelId to the identity it carries in roomId. A
// channel bound in another room is not found.
func (r *repo) GetIdentity(roomId, channelId string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byChannel[channelId]
	if !ok || m.roomId != roomId {
		return "", binding.ErrNotFound
	}

	return m.identity, nil
}

// RemoveByRoomId drops every binding made for roomId and returns how many.
func (r *repo) RemoveByRoomId(roomId string) int {
	funcName := "binding.inmemory.RemoveByRoomId"
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for m, channelId := range r.byMember {
		if m.roomId != roomId {
			continue
		}

		delete(r.byMember, m)
		if r.byChannel[channelId] == m {
			delete(r.byChannel, channelId)
		}
		removed++
	}

	r.logger.Debug(funcName, "room_id", roomId, "removed", removed)
	return removed
}
