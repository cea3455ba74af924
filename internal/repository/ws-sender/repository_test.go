package wssender

import (
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	writing bool
	written []any
	err     error
	overlap bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	if c.writing {
		c.overlap = true
	}
	c.writing = true
	c.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writing = false
	if c.err != nil {
		return c.err
	}
	c.written = append(c.written, v)
	return nil
}

func TestAddSendRemove(t *testing.T) {
	r := NewRepo(slog.Default())
	conn := &fakeConn{}

	require.NoError(t, r.Add("c1", conn))
	assert.ErrorIs(t, r.Add("c1", conn), ErrAlreadyExists)
	assert.True(t, r.IsOnline("c1"))

	require.NoError(t, r.Send("c1", "hello"))
	assert.Equal(t, []any{"hello"}, conn.written)

	require.NoError(t, r.Remove("c1"))
	assert.False(t, r.IsOnline("c1"))
	assert.ErrorIs(t, r.Send("c1", "again"), ErrNotFound)
	assert.ErrorIs(t, r.Remove("c1"), ErrNotFound)
}

func TestSendWriteError(t *testing.T) {
	r := NewRepo(slog.Default())
	writeErr := errors.New("broken pipe")
	require.NoError(t, r.Add("c1", &fakeConn{err: writeErr}))

	assert.ErrorIs(t, r.Send("c1", "x"), writeErr)
}

func TestSendConcurrent(t *testing.T) {
	r := NewRepo(slog.Default())
	conn := &fakeConn{}
	require.NoError(t, r.Add("c1", conn))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, r.Send("c1", i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, conn.written, 50)
	assert.False(t, conn.overlap)
}
