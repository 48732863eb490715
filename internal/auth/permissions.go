package auth

import (
	"fmt"
	"slices"
)

// Permission identifies one authorized action. Matching is exact.
type Permission string

// PermNone marks a route that requires a valid token but no permission
const PermNone Permission = ""

const (
	PermViewActors  Permission = "view:actors"
	PermViewMovies  Permission = "view:movies"
	PermAddActor    Permission = "add:actor"
	PermAddMovie    Permission = "add:movie"
	PermUpdateActor Permission = "update:actor"
	PermUpdateMovie Permission = "update:movie"
	PermDeleteActor Permission = "delete:actor"
	PermDeleteMovie Permission = "delete:movie"
)

// CheckPermissions reports whether claims grant required.
// A missing permissions claim is a 401, a missing entry a 403.
func CheckPermissions(required Permission, claims Claims) error {
	if required == PermNone {
		return nil
	}

	perms, ok := claims.Permissions()
	if !ok {
		return NewAuthError(KindPermissionsClaimMissing, MsgPermissionsClaimMissing, nil)
	}

	if !slices.Contains(perms, string(required)) {
		return NewAuthError(KindPermissionDenied, MsgPermissionDenied, fmt.Errorf("missing %s", required))
	}

	return nil
}
