package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/db/inmem"
	"github.com/alnifu/orgsync-web-sub000/model"
)

func TestRecordViewDedupsPerSession(t *testing.T) {
	db := inmem.NewDatabase()
	ctx := context.Background()
	postId, err := db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: "alice",
		Title:    "Announcement",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)

	tracker := NewViewTracker(db)
	tracker.RecordView(ctx, "session-1", postId)
	tracker.RecordView(ctx, "session-1", postId)
	tracker.RecordView(ctx, "session-1", postId)

	post, err := db.GetPostById(ctx, postId, &appDb.PostQueryOpts{})
	require.NoError(t, err)
	require.EqualValues(t, 1, post.ViewCount)
}

func TestRecordViewCountsDistinctSessions(t *testing.T) {
	db := inmem.NewDatabase()
	ctx := context.Background()
	postId, err := db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: "alice",
		Title:    "Announcement",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)

	tracker := NewViewTracker(db)
	tracker.RecordView(ctx, "session-1", postId)
	tracker.RecordView(ctx, "session-2", postId)

	post, err := db.GetPostById(ctx, postId, &appDb.PostQueryOpts{})
	require.NoError(t, err)
	require.EqualValues(t, 2, post.ViewCount)
}

func TestRecordViewIgnoresEmptySession(t *testing.T) {
	db := inmem.NewDatabase()
	ctx := context.Background()
	postId, err := db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: "alice",
		Title:    "Announcement",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)

	tracker := NewViewTracker(db)
	tracker.RecordView(ctx, "", postId)

	post, err := db.GetPostById(ctx, postId, &appDb.PostQueryOpts{})
	require.NoError(t, err)
	require.EqualValues(t, 0, post.ViewCount)
}
