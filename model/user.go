package model

// User holds the local user data relevant to the application (outside of the
// auth provider)
type User struct {
	Id          string `db:"firebase_id" json:"id"`
	DisplayName string `db:"display_name" json:"displayName"`
	Email       string `db:"email" json:"email,omitempty"`
	IsAdmin     bool   `db:"is_admin" json:"isAdmin"`
	Avatar      string `db:"avatar" json:"avatar"`
}

type AnonymousUser struct {
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

type DisplayableUser struct {
	*AnonymousUser `json:"anonymousUser,omitempty"`
	*User          `json:"user,omitempty"`
}

// LeaderboardEntry is a derived row: points are recomputed from interaction
// rows on every query, never stored.
type LeaderboardEntry struct {
	User   *User `json:"user"`
	Points int64 `json:"points"`
	Rank   int   `json:"rank"`
}
