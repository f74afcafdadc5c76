package app

import (
	"context"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
)

type PostCursorOpts struct {
	Limit int16
}

// PostCursor is one page of a post listing; Posts returns the page plus the
// cursor for the next one (nil when exhausted).
type PostCursor interface {
	Posts(ctx context.Context, db appDb.Database, viewer *model.User, opts *PostCursorOpts) (posts []*model.Post, cursor interface{}, err error)
}

type PostCursorType string

// PostFilter is the caller-facing subset of the list query, shared by every
// cursor type.
type PostFilter struct {
	OrgIds     []int64           `json:"orgIds,omitempty"`
	Tag        string            `json:"tag,omitempty"`
	PostType   *model.PostType   `json:"postType,omitempty"`
	Status     *model.PostStatus `json:"status,omitempty"`
	SearchText string            `json:"searchText,omitempty"`
}

func (pf *PostFilter) applyTo(query *appDb.PostsListQuery) {
	query.OrgIds = pf.OrgIds
	query.Tag = pf.Tag
	query.Type = pf.PostType
	query.Status = pf.Status
	query.SearchText = pf.SearchText
}
