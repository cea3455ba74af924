package room

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type relayKind string

const (
	relayHostTime relayKind = "host-time"
	relayState    relayKind = "state"
)

const (
	reasonTimeout          = "timeout"
	reasonHostDisconnected = "host-disconnected"
	reasonHostOffline      = "host-offline"
)

// relay is a host round trip started on behalf of one requester channel.
type relay struct {
	id                 string
	kind               relayKind
	roomId             string
	hostId             string
	requesterChannelId string
	timer              *time.Timer
}

type relayRegistry struct {
	relays  map[string]*relay
	timeout time.Duration
	mu      sync.Mutex
}

func newRelayRegistry(timeout time.Duration) *relayRegistry {
	return &relayRegistry{
		relays:  make(map[string]*relay),
		timeout: timeout,
	}
}

// start registers a relay under a fresh token. onTimeout runs only if the
// relay is still pending when the timeout elapses.
func (r *relayRegistry) start(kind relayKind, roomId, hostId, requesterChannelId string, onTimeout func(*relay)) *relay {
	rl := &relay{
		id:                 uuid.NewString(),
		kind:               kind,
		roomId:             roomId,
		hostId:             hostId,
		requesterChannelId: requesterChannelId,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.relays[rl.id] = rl
	if r.timeout > 0 {
		rl.timer = time.AfterFunc(r.timeout, func() {
			r.mu.Lock()
			_, ok := r.relays[rl.id]
			delete(r.relays, rl.id)
			r.mu.Unlock()

			if ok {
				onTimeout(rl)
			}
		})
	}

	return rl
}

// take removes and returns the relay with the given token if match accepts it.
// A rejected relay stays pending.
func (r *relayRegistry) take(id string, match func(*relay) bool) (*relay, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rl, ok := r.relays[id]
	if !ok || !match(rl) {
		return nil, false
	}

	r.removeLocked(rl)
	return rl, true
}

func (r *relayRegistry) takeAll(match func(*relay) bool) []*relay {
	r.mu.Lock()
	defer r.mu.Unlock()

	var taken []*relay
	for _, rl := range r.relays {
		if match(rl) {
			taken = append(taken, rl)
		}
	}

	for _, rl := range taken {
		r.removeLocked(rl)
	}

	return taken
}

func (r *relayRegistry) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.relays)
}

func (r *relayRegistry) stopAll() {
	r.takeAll(func(*relay) bool { return true })
}

func (r *relayRegistry) removeLocked(rl *relay) {
	if rl.timer != nil {
		rl.timer.Stop()
	}
	delete(r.relays, rl.id)
}
