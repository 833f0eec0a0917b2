package quota

import (
	"time"

	"codeberg.org/promptcraft/server/promptcraft/users"
)

// identity for a caller without an account session
func Anonymous(deviceID string, loc *time.Location) Identity {
	return Identity{DeviceID: deviceID, Location: loc}
}

// identity for a signed-in account
func Account(u *users.User, loc *time.Location) Identity {
	id := Identity{User: u, Location: loc}
	if u != nil {
		id.UserID = u.ID
	}

	return id
}

// reports whether the identity has no account session
func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

// returns the storage key for the identity's usage record
func (i Identity) Key() string {
	if i.IsAnonymous() {
		return "anon:" + i.DeviceID
	}

	return "user:" + i.UserID
}
