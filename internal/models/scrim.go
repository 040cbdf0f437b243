package models

import "time"

type ScrimStatus string

const (
	ScrimStatusOpen       ScrimStatus = "open"
	ScrimStatusChallenged ScrimStatus = "challenged"
)

type Scrim struct {
	ID               string
	TeamID           string
	Status           ScrimStatus
	Region           string
	ScheduledAt      *time.Time
	Note             *string
	ChallengerTeamID *string
	ChallengedBy     *string
	ChallengedAt     *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
