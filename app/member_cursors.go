package app

import (
	"context"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
)

// Member cursors restrict the feed to orgs the viewer belongs to. They fill
// in the org filter from the membership rows on the first page; later pages
// carry it in the cursor.

type MemberMostRecentCursor struct {
	MostRecentCursor
}

func (s *MemberMostRecentCursor) Posts(ctx context.Context, db appDb.Database, viewer *model.User, cursorOpts *PostCursorOpts) (posts []*model.Post, cursor interface{}, err error) {
	if s.OrgIds != nil {
		return s.MostRecentCursor.Posts(ctx, db, viewer, cursorOpts)
	}
	orgIds, err := fetchMemberOrgIds(ctx, db, viewer)
	if err != nil {
		return nil, nil, err
	}
	return s.WithOrgs(orgIds).Posts(ctx, db, viewer, cursorOpts)
}

type MemberMostPopularCursor struct {
	MostPopularCursor
}

func (s *MemberMostPopularCursor) Posts(ctx context.Context, db appDb.Database, viewer *model.User, cursorOpts *PostCursorOpts) (posts []*model.Post, cursor interface{}, err error) {
	if s.OrgIds != nil {
		return s.MostPopularCursor.Posts(ctx, db, viewer, cursorOpts)
	}
	orgIds, err := fetchMemberOrgIds(ctx, db, viewer)
	if err != nil {
		return nil, nil, err
	}
	return s.WithOrgs(orgIds).Posts(ctx, db, viewer, cursorOpts)
}

func fetchMemberOrgIds(ctx context.Context, db appDb.Database, viewer *model.User) ([]int64, error) {
	if viewer == nil {
		return nil, ErrLoginRequired
	}
	memberships, err := db.GetMembershipsForUser(ctx, viewer.Id)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(memberships))
	for i, membership := range memberships {
		ids[i] = membership.OrgId
	}
	return ids, nil
}
