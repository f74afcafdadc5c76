package app

import (
	"context"
	"strconv"
	"time"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
)

type MostRecentCursor struct {
	PostFilter
	LastDate *time.Time `json:"lastDate,omitempty"`
	LastId   string     `json:"lastId,omitempty"`
}

func (mrc *MostRecentCursor) Posts(ctx context.Context, db appDb.Database, viewer *model.User, cursorOpts *PostCursorOpts) (posts []*model.Post, cursor interface{}, err error) {
	viewerId := ""
	if viewer != nil {
		viewerId = viewer.Id
	}

	query := &appDb.PostsListQuery{
		SortField: appDb.SortByCreatedAt,
		From:      mrc.LastDate,
		LastId:    mrc.LastId,
		PostsListQueryOpts: &appDb.PostsListQueryOpts{
			Limit:    cursorOpts.Limit,
			ViewerId: viewerId,
		},
	}
	mrc.applyTo(query)

	posts, err = db.GetPosts(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return posts, mrc.buildCursorForNextPage(posts), nil
}

func (mrc *MostRecentCursor) buildCursorForNextPage(previousPosts []*model.Post) *MostRecentCursor {
	if len(previousPosts) == 0 {
		return nil
	}
	last := previousPosts[len(previousPosts)-1]
	lastDate := last.CreatedAt
	return &MostRecentCursor{
		PostFilter: mrc.PostFilter,
		LastDate:   &lastDate,
		LastId:     strconv.FormatInt(last.Id, 10),
	}
}

func (mrc *MostRecentCursor) WithOrgs(orgIds []int64) *MostRecentCursor {
	newCursor := *mrc
	newCursor.OrgIds = orgIds
	return &newCursor
}
