package models

import "time"

type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RolePlayer    Role = "player"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleModerator, RolePlayer:
		return true
	}
	return false
}

// IsStaff reports whether the role carries platform privilege.
func (r Role) IsStaff() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleModerator
}

// Caller is the verified identity attached to a request by the identity
// provider's token.
type Caller struct {
	UID               string
	Role              Role
	CertifiedStreamer bool
}

type User struct {
	UID               string
	DisplayName       string
	AvatarURL         *string
	Country           *string
	Role              Role
	CertifiedStreamer bool
	Disabled          bool
	BanUntil          *time.Time
	BanReason         *string
	BannedBy          *string
	TotalHonors       int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
