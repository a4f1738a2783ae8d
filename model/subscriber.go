package model

import "time"

type Subscriber struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	IsActive     bool       `json:"is_active"`
	SubscribedAt time.Time  `json:"subscribed_at"`
	LastNotified *time.Time `json:"last_notified,omitempty"`
	Source       string     `json:"source"`
}

type SubscribeReq struct {
	Email string `json:"email" validate:"required,email"`
}
