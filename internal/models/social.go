package models

import "time"

type Block struct {
	BlockerUID string
	BlockedUID string
	CreatedAt  time.Time
}

type NotificationKind string

const (
	NotificationHonorReceived   NotificationKind = "honor_received"
	NotificationScrimChallenged NotificationKind = "scrim_challenged"
)

type Notification struct {
	ID        string
	UID       string
	Kind      NotificationKind
	Payload   map[string]any
	Read      bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestDeclined FriendRequestStatus = "declined"
	FriendRequestExpired  FriendRequestStatus = "expired"
)

type FriendRequest struct {
	ID        string
	From      string
	To        string
	Status    FriendRequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AdminLog struct {
	ID            string
	ActorUID      string
	TargetUID     string
	Action        string
	Reason        *string
	DurationHours *int
	CreatedAt     time.Time
}

type ChatThread struct {
	ID            string
	ScrimID       *string
	CreatedAt     time.Time
	LastMessageAt *time.Time
}
