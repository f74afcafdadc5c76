package inmem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	db2 "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
)

func TestInteractionUniqueness(t *testing.T) {
	mdb := NewDatabase()
	ctx := context.Background()
	postId, err := mdb.CreatePost(ctx, &db2.CreatePost{
		AuthorId: "alice",
		Title:    "Poll",
		Status:   model.StatusPublished,
		Type:     model.PostTypePoll,
		Poll:     &db2.CreatePollDetail{Question: "Day?", Options: []string{"Mon", "Fri"}},
	})
	require.NoError(t, err)

	require.NoError(t, mdb.CreateVote(ctx, "bob", postId, 0))
	require.ErrorIs(t, mdb.CreateVote(ctx, "bob", postId, 1), db2.ErrDuplicate)

	require.NoError(t, mdb.CreateLike(ctx, "bob", postId))
	require.ErrorIs(t, mdb.CreateLike(ctx, "bob", postId), db2.ErrDuplicate)
}

func TestAddParticipantEnforcesCapacity(t *testing.T) {
	mdb := NewDatabase()
	ctx := context.Background()
	capacity := 1
	postId, err := mdb.CreatePost(ctx, &db2.CreatePost{
		AuthorId: "alice",
		Title:    "Workshop",
		Status:   model.StatusPublished,
		Type:     model.PostTypeEvent,
		Event:    &db2.CreateEventDetail{Location: "Lab", MaxParticipants: &capacity},
	})
	require.NoError(t, err)

	require.NoError(t, mdb.AddParticipant(ctx, "bob", postId))
	require.ErrorIs(t, mdb.AddParticipant(ctx, "carol", postId), db2.ErrEventFull)
}

func TestDeletePostCascades(t *testing.T) {
	mdb := NewDatabase()
	ctx := context.Background()
	postId, err := mdb.CreatePost(ctx, &db2.CreatePost{
		AuthorId: "alice",
		Title:    "Announcement",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)
	require.NoError(t, mdb.CreateLike(ctx, "bob", postId))

	require.NoError(t, mdb.DeletePost(ctx, postId))

	post, err := mdb.GetPostById(ctx, postId, &db2.PostQueryOpts{})
	require.NoError(t, err)
	require.Nil(t, post)
	count, err := mdb.GetLikeCount(ctx, postId)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestGetLeaderboardPoints(t *testing.T) {
	mdb := NewDatabase()
	ctx := context.Background()
	require.NoError(t, mdb.CreateUser(ctx, &model.User{Id: "alice", DisplayName: "Alice"}))
	require.NoError(t, mdb.CreateUser(ctx, &model.User{Id: "bob", DisplayName: "Bob"}))

	postId, err := mdb.CreatePost(ctx, &db2.CreatePost{
		AuthorId: "alice",
		Title:    "Announcement",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)
	require.NoError(t, mdb.CreateLike(ctx, "bob", postId))

	entries, err := mdb.GetLeaderboard(ctx, nil, 10)
	require.NoError(t, err)
	// alice: 10 for the post + 2 for the like received; bob scored nothing
	require.Len(t, entries, 1)
	require.Equal(t, "alice", entries[0].User.Id)
	require.EqualValues(t, 12, entries[0].Points)
	require.Equal(t, 1, entries[0].Rank)
}

func TestGetLeaderboardScopedToOrg(t *testing.T) {
	mdb := NewDatabase()
	ctx := context.Background()
	orgId, err := mdb.CreateOrg(ctx, &db2.CreateOrg{Name: "Chess Club", Category: "hobby", CreatorId: "alice"})
	require.NoError(t, err)

	_, err = mdb.CreatePost(ctx, &db2.CreatePost{
		AuthorId: "alice",
		OrgId:    &orgId,
		Title:    "Meeting",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)
	_, err = mdb.CreatePost(ctx, &db2.CreatePost{
		AuthorId: "bob",
		Title:    "Unaffiliated post",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)

	entries, err := mdb.GetLeaderboard(ctx, &orgId, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "alice", entries[0].User.Id)
}
