package app

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/db/inmem"
	"github.com/alnifu/orgsync-web-sub000/model"
)

func TestMostViewedCursorOrdersByViews(t *testing.T) {
	db := inmem.NewDatabase()
	ctx := context.Background()

	quietId, err := db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: "alice",
		Title:    "Quiet post",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)
	popularId, err := db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: "alice",
		Title:    "Popular post",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)
	require.NoError(t, db.IncrementViewCount(ctx, popularId))
	require.NoError(t, db.IncrementViewCount(ctx, popularId))

	cursor := &MostViewedCursor{}
	posts, nextCursor, err := cursor.Posts(ctx, db, nil, &PostCursorOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, popularId, posts[0].Id)
	require.Equal(t, quietId, posts[1].Id)

	// the continuation carries the last page's view count and id
	next, ok := nextCursor.(*MostViewedCursor)
	require.True(t, ok)
	require.EqualValues(t, 0, next.LastViewCount.Val)
	require.Equal(t, strconv.FormatInt(quietId, 10), next.LastId)
}

func TestMostViewedCursorDecodesFromTaggedUnion(t *testing.T) {
	var cursor TaggedUnionCursor
	err := json.Unmarshal([]byte(`{
		"cursorType": "MOST_VIEWED",
		"cursor": {"lastViewCount": {"val": 7}, "lastId": "42"}
	}`), &cursor)
	require.NoError(t, err)

	mostViewed, ok := cursor.PostCursor.(*MostViewedCursor)
	require.True(t, ok)
	require.EqualValues(t, 7, mostViewed.LastViewCount.Val)
	require.Equal(t, "42", mostViewed.LastId)
}
