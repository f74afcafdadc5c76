package app

import (
	"context"
	"strconv"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
)

type LastViewCount struct {
	Val int64 `json:"val"`
}

func (lvc *LastViewCount) ToDBFilter() *appDb.IntFilter {
	if lvc == nil {
		return nil
	}
	return &appDb.IntFilter{Val: lvc.Val}
}

type MostViewedCursor struct {
	PostFilter
	LastViewCount *LastViewCount `json:"lastViewCount,omitempty"`
	LastId        string         `json:"lastId,omitempty"`
}

func (mvc *MostViewedCursor) Posts(ctx context.Context, db appDb.Database, viewer *model.User, cursorOpts *PostCursorOpts) (posts []*model.Post, cursor interface{}, err error) {
	viewerId := ""
	if viewer != nil {
		viewerId = viewer.Id
	}

	query := &appDb.PostsListQuery{
		SortField: appDb.SortByViewCount,
		MaxViews:  mvc.LastViewCount.ToDBFilter(),
		LastId:    mvc.LastId,
		PostsListQueryOpts: &appDb.PostsListQueryOpts{
			Limit:    cursorOpts.Limit,
			ViewerId: viewerId,
		},
	}
	mvc.applyTo(query)

	posts, err = db.GetPosts(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return posts, mvc.buildCursorForNextPage(posts), nil
}

func (mvc *MostViewedCursor) buildCursorForNextPage(previousPosts []*model.Post) *MostViewedCursor {
	if len(previousPosts) == 0 {
		return nil
	}
	last := previousPosts[len(previousPosts)-1]
	return &MostViewedCursor{
		PostFilter:    mvc.PostFilter,
		LastViewCount: &LastViewCount{Val: last.ViewCount},
		LastId:        strconv.FormatInt(last.Id, 10),
	}
}

func (mvc *MostViewedCursor) WithOrgs(orgIds []int64) *MostViewedCursor {
	newCursor := *mvc
	newCursor.OrgIds = orgIds
	return &newCursor
}
