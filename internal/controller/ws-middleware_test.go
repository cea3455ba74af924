package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/sharetube/watchparty/internal/service/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleWSErrorLevels(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{name: "not joined", err: room.ErrNotJoined, level: "INFO"},
		{name: "room not found", err: fmt.Errorf("sync: %w", room.ErrRoomNotFound), level: "INFO"},
		{name: "members limit", err: room.ErrMembersLimitReached, level: "INFO"},
		{name: "playlist limit", err: room.ErrPlaylistLimitReached, level: "INFO"},
		{name: "unauthorized", err: room.ErrUnauthorized, level: "INFO"},
		{name: "missing join", err: errNotJoined, level: "INFO"},
		{name: "store failure", err: errors.New("connection refused"), level: "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := controller{logger: slog.New(slog.NewJSONHandler(&buf, nil))}

			c.handleWSError(context.Background(), nil, tt.err)

			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, tt.level, record["level"])
		})
	}
}
