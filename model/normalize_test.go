package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildDetailEventWithSideRow(t *testing.T) {
	side := &EventDetail{
		StartDate: time.Now(),
		EndDate:   time.Now().Add(time.Hour),
		Location:  "Student Union 204",
	}
	detail, content := BuildDetail(PostTypeEvent, side, "kickoff meeting")

	require.Equal(t, PostTypeEvent, detail.PostType())
	require.Same(t, side, detail)
	require.Equal(t, "kickoff meeting", content)
}

func TestBuildDetailMissingSideRowFallsBackToGeneral(t *testing.T) {
	detail, content := BuildDetail(PostTypeEvent, nil, "orphaned event post")

	require.Equal(t, PostTypeGeneral, detail.PostType())
	require.Equal(t, "orphaned event post", content)
}

func TestBuildDetailEmbeddedPollPayload(t *testing.T) {
	content := `{"question":"Pizza or tacos?","options":["Pizza","Tacos"],"multipleChoice":false}`
	detail, display := BuildDetail(PostTypePoll, nil, content)

	poll, ok := detail.(*PollDetail)
	require.True(t, ok)
	require.Equal(t, "Pizza or tacos?", poll.Question)
	require.Equal(t, []string{"Pizza", "Tacos"}, poll.Options)
	require.Equal(t, []int{0, 0}, poll.Results)
	require.Equal(t, "Pizza or tacos?", display)
}

func TestBuildDetailGarbageContentIsLiteralText(t *testing.T) {
	detail, display := BuildDetail(PostTypePoll, nil, `{not json at all`)

	require.Equal(t, PostTypeGeneral, detail.PostType())
	require.Equal(t, `{not json at all`, display)
}

func TestBuildDetailEmbeddedFeedbackPayload(t *testing.T) {
	content := `{"description":"Event feedback","fields":[{"type":"email","question":"Email","required":true}]}`
	detail, _ := BuildDetail(PostTypeFeedback, nil, content)

	feedback, ok := detail.(*FeedbackDetail)
	require.True(t, ok)
	require.Equal(t, "Event feedback", feedback.Description)
	require.Len(t, feedback.Fields, 1)
	require.Equal(t, FieldTypeEmail, feedback.Fields[0].Type)
	require.True(t, feedback.Fields[0].Required)
}

func TestBuildDetailReturnsExactlyOneVariant(t *testing.T) {
	cases := []struct {
		tag  PostType
		side Detail
		want PostType
	}{
		{PostTypeGeneral, nil, PostTypeGeneral},
		{PostTypeEvent, &EventDetail{}, PostTypeEvent},
		{PostTypePoll, &PollDetail{Options: []string{"A"}}, PostTypePoll},
		{PostTypeFeedback, &FeedbackDetail{Description: "d"}, PostTypeFeedback},
		// unknown tag degrades rather than leaking a raw string through
		{PostType("mystery"), nil, PostTypeGeneral},
	}
	for _, tc := range cases {
		detail, _ := BuildDetail(tc.tag, tc.side, "text")
		require.Equal(t, tc.want, detail.PostType(), "tag %v", tc.tag)
	}
}

func TestPollPercentages(t *testing.T) {
	poll := &PollDetail{Options: []string{"A", "B"}, Results: []int{1, 0}}
	require.Equal(t, []float64{100, 0}, poll.Percentages())

	empty := &PollDetail{Options: []string{"A", "B"}, Results: []int{0, 0}}
	require.Equal(t, []float64{0, 0}, empty.Percentages())

	split := &PollDetail{Options: []string{"A", "B", "C"}, Results: []int{1, 1, 1}}
	total := 0.0
	for _, p := range split.Percentages() {
		total += p
	}
	require.InDelta(t, 100, total, 0.001)
}

func TestEventDetailFull(t *testing.T) {
	cap := 2
	require.True(t, (&EventDetail{MaxParticipants: &cap, ParticipantCount: 2}).Full())
	require.False(t, (&EventDetail{MaxParticipants: &cap, ParticipantCount: 1}).Full())
	require.False(t, (&EventDetail{ParticipantCount: 500}).Full())
}
