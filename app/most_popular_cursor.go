package app

import (
	"context"
	"strconv"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
)

type LastLikeCount struct {
	Val int64 `json:"val"`
}

func (llc *LastLikeCount) ToDBFilter() *appDb.IntFilter {
	if llc == nil {
		return nil
	}
	return &appDb.IntFilter{Val: llc.Val}
}

type MostPopularCursor struct {
	PostFilter
	LastLikeCount *LastLikeCount `json:"lastLikeCount,omitempty"`
	LastId        string         `json:"lastId,omitempty"`
}

func (mpc *MostPopularCursor) Posts(ctx context.Context, db appDb.Database, viewer *model.User, cursorOpts *PostCursorOpts) (posts []*model.Post, cursor interface{}, err error) {
	viewerId := ""
	if viewer != nil {
		viewerId = viewer.Id
	}

	query := &appDb.PostsListQuery{
		SortField: appDb.SortByLikeCount,
		MaxLikes:  mpc.LastLikeCount.ToDBFilter(),
		LastId:    mpc.LastId,
		PostsListQueryOpts: &appDb.PostsListQueryOpts{
			Limit:    cursorOpts.Limit,
			ViewerId: viewerId,
		},
	}
	mpc.applyTo(query)

	posts, err = db.GetPosts(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return posts, mpc.buildCursorForNextPage(posts), nil
}

func (mpc *MostPopularCursor) buildCursorForNextPage(previousPosts []*model.Post) *MostPopularCursor {
	if len(previousPosts) == 0 {
		return nil
	}
	last := previousPosts[len(previousPosts)-1]
	return &MostPopularCursor{
		PostFilter:    mpc.PostFilter,
		LastLikeCount: &LastLikeCount{Val: int64(last.LikeCount)},
		LastId:        strconv.FormatInt(last.Id, 10),
	}
}

func (mpc *MostPopularCursor) WithOrgs(orgIds []int64) *MostPopularCursor {
	newCursor := *mpc
	newCursor.OrgIds = orgIds
	return &newCursor
}
