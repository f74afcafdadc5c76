package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/db/inmem"
	"github.com/alnifu/orgsync-web-sub000/model"
)

func TestMemberMostRecentCursorScopesToMemberships(t *testing.T) {
	db := inmem.NewDatabase()
	ctx := context.Background()
	viewer := &model.User{Id: "alice", DisplayName: "Alice"}
	require.NoError(t, db.CreateUser(ctx, viewer))

	joinedOrg, err := db.CreateOrg(ctx, &appDb.CreateOrg{Name: "Chess Club", Category: "hobby", CreatorId: viewer.Id})
	require.NoError(t, err)
	otherOrg, err := db.CreateOrg(ctx, &appDb.CreateOrg{Name: "Debate Society", Category: "academic", CreatorId: "bob"})
	require.NoError(t, err)

	_, err = db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: viewer.Id,
		OrgId:    &joinedOrg,
		Title:    "Club meeting",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)
	_, err = db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: "bob",
		OrgId:    &otherOrg,
		Title:    "Debate finals",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)

	cursor := &MemberMostRecentCursor{}
	posts, _, err := cursor.Posts(ctx, db, viewer, &PostCursorOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "Club meeting", posts[0].Title)
}

func TestMemberMostRecentCursorRequiresLogin(t *testing.T) {
	db := inmem.NewDatabase()

	cursor := &MemberMostRecentCursor{}
	_, _, err := cursor.Posts(context.Background(), db, nil, &PostCursorOpts{Limit: 10})
	require.ErrorIs(t, err, ErrLoginRequired)
}
