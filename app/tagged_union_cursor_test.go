package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaggedUnionCursorUnmarshal(t *testing.T) {
	var cursor TaggedUnionCursor
	err := json.Unmarshal([]byte(`{
		"cursorType": "MOST_RECENT",
		"cursor": {"orgIds": [4], "lastId": "17"}
	}`), &cursor)
	require.NoError(t, err)
	require.Equal(t, PostCursorTypeMostRecent, cursor.CursorType)

	mostRecent, ok := cursor.PostCursor.(*MostRecentCursor)
	require.True(t, ok)
	require.Equal(t, []int64{4}, mostRecent.OrgIds)
	require.Equal(t, "17", mostRecent.LastId)
}

func TestTaggedUnionCursorUnmarshalWithoutCursor(t *testing.T) {
	var cursor TaggedUnionCursor
	err := json.Unmarshal([]byte(`{"cursorType": "MEMBER_MOST_POPULAR"}`), &cursor)
	require.NoError(t, err)

	_, ok := cursor.PostCursor.(*MemberMostPopularCursor)
	require.True(t, ok)
}

func TestTaggedUnionCursorUnknownType(t *testing.T) {
	var cursor TaggedUnionCursor
	err := json.Unmarshal([]byte(`{"cursorType": "TRENDING"}`), &cursor)
	require.ErrorIs(t, err, UnknownCursorTypeErr)
}
