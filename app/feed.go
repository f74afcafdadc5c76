package app

import (
	"context"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
)

// FeedPage is one page of the feed, already run through the display builder
// so every post carries its affordance and aggregates.
type FeedPage struct {
	Posts  []*DisplayPost `json:"posts"`
	Cursor interface{}    `json:"cursor"`
}

func GetFeedPage(ctx context.Context, db appDb.Database, viewer *model.User, cursor PostCursor, opts *PostCursorOpts) (*FeedPage, error) {
	posts, nextCursor, err := cursor.Posts(ctx, db, viewer, opts)
	if err != nil {
		return nil, err
	}
	displays, err := BuildDisplays(posts)
	if err != nil {
		return nil, err
	}
	return &FeedPage{
		Posts:  displays,
		Cursor: nextCursor,
	}, nil
}
