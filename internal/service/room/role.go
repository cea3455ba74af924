package room

import (
	"slices"

	"github.com/sharetube/watchparty/internal/repository/room"
)

// resolveRole derives the role of identity from the room state. Callers must
// resolve again after any promotion instead of caching the result.
func resolveRole(r room.Room, identity string) Role {
	if identity != "" && identity == r.HostId {
		return RoleHost
	}

	if slices.Contains(r.AllowedIds, identity) {
		return RoleCoHost
	}

	return RoleViewer
}
