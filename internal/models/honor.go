package models

import "time"

type HonorKind string

const (
	HonorKindPos HonorKind = "pos"
	HonorKindNeg HonorKind = "neg"
)

type HonorType string

const (
	HonorTypeMVP        HonorType = "MVP"
	HonorTypeFairPlay   HonorType = "FAIR_PLAY"
	HonorTypeLeadership HonorType = "LEADERSHIP"
	HonorTypeToxic      HonorType = "TOXIC"
	HonorTypeGriefing   HonorType = "GRIEFING"
	HonorTypeAFK        HonorType = "AFK"
)

// ValidHonorType reports whether typ belongs to the sub-reason set of kind.
func ValidHonorType(kind HonorKind, typ HonorType) bool {
	switch kind {
	case HonorKindPos:
		return typ == HonorTypeMVP || typ == HonorTypeFairPlay || typ == HonorTypeLeadership
	case HonorKindNeg:
		return typ == HonorTypeToxic || typ == HonorTypeGriefing || typ == HonorTypeAFK
	}
	return false
}

type HonorEvent struct {
	ID        string
	From      string
	To        string
	Kind      HonorKind
	Type      HonorType
	Reason    *string
	CreatedAt time.Time
}

type HonorStats struct {
	UID       string
	Pos       int
	Neg       int
	Total     int
	Stars     float64
	UpdatedAt time.Time
}

// RankingEntry is one row of the rankings page, stats enriched with the
// denormalized profile fields.
type RankingEntry struct {
	UID         string  `json:"uid"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
	Country     *string `json:"country"`
	Pos         int     `json:"pos"`
	Neg         int     `json:"neg"`
	Total       int     `json:"total"`
	Stars       float64 `json:"stars"`
}
