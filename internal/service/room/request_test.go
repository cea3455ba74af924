package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaiseHandAndResolve(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultTestConfig())
	env.join(t, "R1", "c1", "U1", "alice")
	env.join(t, "R1", "c2", "U2", "bob")

	resp, err := env.svc.RaiseHand(ctx, &RaiseHandParams{RoomId: "R1", ChannelId: "c2"})
	require.NoError(t, err)
	assert.True(t, resp.Added)

	request := env.sender.last(t, "c1", EventControlRequest)
	assert.Equal(t, ControlRequest{RequesterId: "U2", RequesterName: "bob"}, request.Payload.(*ControlRequestPayload).Request)

	update := env.sender.last(t, "c1", EventUpdateRequests)
	assert.Equal(t, []ControlRequest{{RequesterId: "U2", RequesterName: "bob"}}, update.Payload.(*RequestsPayload).Requests)
	assert.Empty(t, env.sender.byType("c2", EventControlRequest))

	resolved, err := env.svc.ResolveRequest(ctx, &ResolveRequestParams{RoomId: "R1", ChannelId: "c1", TargetId: "U2", Accept: true})
	require.NoError(t, err)
	assert.True(t, resolved.Promoted)

	assert.Contains(t, env.room(t, "R1").AllowedIds, "U2")
	roleUpdate := env.sender.last(t, "c2", EventRoleUpdate)
	assert.Equal(t, RoleCoHost, roleUpdate.Payload.(*RoleUpdatePayload).Role)

	update = env.sender.last(t, "c1", EventUpdateRequests)
	assert.Empty(t, update.Payload.(*RequestsPayload).Requests)
	env.assertHostAllowed(t, "R1")
}

func TestRaiseHandDedupe(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultTestConfig())
	env.join(t, "R1", "c1", "U1", "alice")
	env.join(t, "R1", "c2", "U2", "bob")

	for i := 0; i < 3; i++ {
		_, err := env.svc.RaiseHand(ctx, &RaiseHandParams{RoomId: "R1", ChannelId: "c2"})
		require.NoError(t, err)
	}

	requests, err := env.rooms.GetControlRequests(ctx, "R1")
	require.NoError(t, err)
	assert.Len(t, requests, 1)
	assert.Len(t, env.sender.byType("c1", EventControlRequest), 1)

	// the host is already allowed
	resp, err := env.svc.RaiseHand(ctx, &RaiseHandParams{RoomId: "R1", ChannelId: "c1"})
	require.NoError(t, err)
	assert.False(t, resp.Added)
}

func TestRaiseHandWithOfflineHost(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultTestConfig())
	env.join(t, "R1", "c1", "U1", "alice")
	env.join(t, "R1", "c2", "U2", "bob")
	env.sender.disconnect("c1")

	resp, err := env.svc.RaiseHand(ctx, &RaiseHandParams{RoomId: "R1", ChannelId: "c2"})
	require.NoError(t, err)
	assert.True(t, resp.Added)

	// the pending list reaches the host on its next join
	env.join(t, "R1", "c3", "U1", "alice")
	update := env.sender.last(t, "c3", EventUpdateRequests)
	assert.Len(t, update.Payload.(*RequestsPayload).Requests, 1)
}

func TestResolveRequestDeny(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultTestConfig())
	env.join(t, "R1", "c1", "U1", "alice")
	env.join(t, "R1", "c2", "U2", "bob")
	_, err := env.svc.RaiseHand(ctx, &RaiseHandParams{RoomId: "R1", ChannelId: "c2"})
	require.NoError(t, err)

	resp, err := env.svc.ResolveRequest(ctx, &ResolveRequestParams{RoomId: "R1", ChannelId: "c1", TargetId: "U2"})
	require.NoError(t, err)
	assert.False(t, resp.Promoted)

	assert.NotContains(t, env.room(t, "R1").AllowedIds, "U2")
	requests, err := env.rooms.GetControlRequests(ctx, "R1")
	require.NoError(t, err)
	assert.Empty(t, requests)
	assert.Len(t, env.sender.byType("c2", EventRoleUpdate), 1)
}

func TestGrantPromotion(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		env := newTestEnv(t, defaultTestConfig())
		env.join(t, "R1", "c1", "U1", "alice")
		env.join(t, "R1", "c2", "U2", "bob")

		first, err := env.svc.ResolveRequest(ctx, &ResolveRequestParams{RoomId: "R1", ChannelId: "c1", TargetId: "U2", Accept: true})
		require.NoError(t, err)
		assert.True(t, first.Promoted)

		second, err := env.svc.ResolveRequest(ctx, &ResolveRequestParams{RoomId: "R1", ChannelId: "c1", TargetId: "U2", Accept: true})
		require.NoError(t, err)
		assert.False(t, second.Promoted)

		assert.ElementsMatch(t, []string{"U1", "U2"}, env.room(t, "R1").AllowedIds)
	})

	t.Run("only the host grants", func(t *testing.T) {
		env := newTestEnv(t, defaultTestConfig())
		env.join(t, "R1", "c1", "U1", "alice")
		env.join(t, "R1", "c2", "U2", "bob")
		env.join(t, "R1", "c3", "U3", "carol")
		_, err := env.svc.ResolveRequest(ctx, &ResolveRequestParams{RoomId: "R1", ChannelId: "c1", TargetId: "U2", Accept: true})
		require.NoError(t, err)

		// a co-host is not the host
		_, err = env.svc.ResolveRequest(ctx, &ResolveRequestParams{RoomId: "R1", ChannelId: "c2", TargetId: "U3", Accept: true})
		require.ErrorIs(t, err, ErrUnauthorized)
		assert.NotContains(t, env.room(t, "R1").AllowedIds, "U3")

		r := env.room(t, "R1")
		_, err = env.svc.grantPromotion(ctx, r, "U3", "U3")
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}
