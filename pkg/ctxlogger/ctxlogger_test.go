package ctxlogger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCtx(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ContextHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	ctx := AppendCtx(context.Background(), slog.String("room_id", "r1"))
	child := AppendCtx(ctx, slog.String("channel_id", "c1"))

	logger.InfoContext(child, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "r1", record["room_id"])
	assert.Equal(t, "c1", record["channel_id"])

	buf.Reset()
	logger.InfoContext(ctx, "parent")
	record = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "r1", record["room_id"])
	assert.NotContains(t, record, "channel_id", "child attrs must not leak into parent ctx")
}
