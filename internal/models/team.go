package models

import "time"

type TeamRole string

const (
	TeamRoleOwner   TeamRole = "owner"
	TeamRoleManager TeamRole = "manager"
	TeamRolePlayer  TeamRole = "player"
)

type Team struct {
	ID        string
	Name      string
	Tag       string
	OwnerUID  string
	MemberIDs []string
	CreatedAt time.Time
}

type TeamMember struct {
	TeamID     string
	UID        string
	RoleInTeam TeamRole
	JoinedAt   time.Time
}
