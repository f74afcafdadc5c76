package model

import "time"

// Interaction rows. Each is keyed (user, post) with an at-most-one-per-user
// invariant enforced by a unique constraint at the storage layer; likes are
// the only reversible kind.

type Like struct {
	UserId    string    `db:"user_id" json:"userId"`
	PostId    int64     `db:"post_id" json:"postId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type PollVote struct {
	UserId      string    `db:"user_id" json:"userId"`
	PostId      int64     `db:"post_id" json:"postId"`
	OptionIndex int       `db:"option_index" json:"optionIndex"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type FormResponse struct {
	UserId    string            `db:"user_id" json:"userId"`
	PostId    int64             `db:"post_id" json:"postId"`
	Responses map[string]string `db:"-" json:"responses"`
	CreatedAt time.Time         `db:"created_at" json:"createdAt"`
	// Alias replaces the responder identity when the feedback post is anonymous
	Alias string `db:"alias" json:"alias,omitempty"`
}

// EventParticipant presence means joined; there is no separate RSVP status.
type EventParticipant struct {
	UserId    string    `db:"user_id" json:"userId"`
	PostId    int64     `db:"post_id" json:"postId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
