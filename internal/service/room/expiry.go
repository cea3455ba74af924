package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sharetube/watchparty/internal/repository/room"
	"github.com/sharetube/watchparty/pkg/ctxlogger"
)

type teardownScheduler struct {
	timers map[string]*time.Timer
	grace  time.Duration
	mu     sync.Mutex
}

func newTeardownScheduler(grace time.Duration) *teardownScheduler {
	return &teardownScheduler{
		timers: make(map[string]*time.Timer),
		grace:  grace,
	}
}

// schedule runs fn for roomId after the grace period, replacing any pending
// teardown of the same room.
func (t *teardownScheduler) schedule(roomId string, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.timers[roomId]; ok {
		prev.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(t.grace, func() {
		t.mu.Lock()
		if t.timers[roomId] == timer {
			delete(t.timers, roomId)
		}
		t.mu.Unlock()

		fn()
	})
	t.timers[roomId] = timer
}

func (t *teardownScheduler) cancel(roomId string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer, ok := t.timers[roomId]
	if !ok {
		return false
	}

	timer.Stop()
	delete(t.timers, roomId)
	return true
}

func (t *teardownScheduler) isScheduled(roomId string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.timers[roomId]
	return ok
}

func (t *teardownScheduler) stopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for roomId, timer := range t.timers {
		timer.Stop()
		delete(t.timers, roomId)
	}
}

// teardownRoom deletes an empty room together with its bindings and pending
// relays. A room that got a participant back in the meantime is kept.
func (s service) teardownRoom(roomId string) {
	ctx := ctxlogger.AppendCtx(context.Background(), slog.String("room_id", roomId))

	unlock := s.locks.Lock(roomId)
	defer unlock()

	participants, err := s.roomRepo.GetParticipants(ctx, roomId)
	if err != nil {
		if !errors.Is(err, room.ErrRoomNotFound) {
			s.logger.ErrorContext(ctx, "failed to get participants", "error", err)
		}
		return
	}

	if len(participants) > 0 {
		return
	}

	if err := s.roomRepo.DeleteRoom(ctx, roomId); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete room", "error", err)
		return
	}

	bindings := s.bindingRepo.RemoveByRoomId(roomId)
	relays := s.relays.takeAll(func(rl *relay) bool { return rl.roomId == roomId })
	s.logger.InfoContext(ctx, "room deleted", "bindings", bindings, "relays", len(relays))
}
