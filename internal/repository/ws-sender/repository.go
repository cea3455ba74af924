package wssender

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

const writeWait = 10 * time.Second

var (
	ErrNotFound      = errors.New("channel not found")
	ErrAlreadyExists = errors.New("channel already exists")
)

// Conn is the write side of a client connection.
type Conn interface {
	WriteJSON(v any) error
}

type channel struct {
	conn Conn
	mu   sync.Mutex
}

type Repo struct {
	channels map[string]*channel
	mu       sync.RWMutex
	logger   *slog.Logger
}

func NewRepo(logger *slog.Logger) *Repo {
	return &Repo{
		channels: make(map[string]*channel),
		logger:   logger,
	}
}

func (r *Repo) Add(channelId string, conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[channelId]; ok {
		return ErrAlreadyExists
	}

	r.channels[channelId] = &channel{conn: conn}
	return nil
}

func (r *Repo) Remove(channelId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[channelId]; !ok {
		return ErrNotFound
	}

	delete(r.channels, channelId)
	return nil
}

func (r *Repo) IsOnline(channelId string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.channels[channelId]
	return ok
}

// Send writes v to the channel. Writes to one channel never interleave.
func (r *Repo) Send(channelId string, v any) error {
	r.mu.RLock()
	ch, ok := r.channels[channelId]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	// a stalled reader must not block the room forever
	if d, ok := ch.conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
		d.SetWriteDeadline(time.Now().Add(writeWait))
	}

	if err := ch.conn.WriteJSON(v); err != nil {
		r.logger.Debug("wssender.Send", "channel_id", channelId, "error", err)
		return err
	}

	return nil
}
