package app

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alnifu/orgsync-web-sub000/model"
)

func basePost(detail model.Detail) *model.Post {
	return &model.Post{
		Id:        1,
		Title:     "Post",
		Status:    model.StatusPublished,
		LikeCount: 3,
		Detail:    detail,
	}
}

func TestBuildDisplayGeneral(t *testing.T) {
	display, err := BuildDisplay(basePost(model.GeneralDetail{}))
	require.NoError(t, err)
	require.Equal(t, AffordanceNone, display.Affordance.Kind)
	require.False(t, display.Affordance.Disabled)
	require.Equal(t, 3, display.Aggregate.LikeCount)
}

func TestGeneralAggregateSerializesZeroLikes(t *testing.T) {
	post := basePost(model.GeneralDetail{})
	post.LikeCount = 0
	display, err := BuildDisplay(post)
	require.NoError(t, err)

	encoded, err := json.Marshal(display.Aggregate)
	require.NoError(t, err)
	require.Contains(t, string(encoded), `"likeCount":0`)
}

func TestBuildDisplayEvent(t *testing.T) {
	max := 10
	display, err := BuildDisplay(basePost(&model.EventDetail{
		MaxParticipants:  &max,
		ParticipantCount: 4,
	}))
	require.NoError(t, err)
	require.Equal(t, AffordanceJoinLeave, display.Affordance.Kind)
	require.False(t, display.Affordance.Disabled)
	require.Equal(t, 4, *display.Aggregate.ParticipantCount)
	require.Equal(t, 10, *display.Aggregate.MaxParticipants)
}

func TestBuildDisplayEventAtCapacity(t *testing.T) {
	max := 2
	display, err := BuildDisplay(basePost(&model.EventDetail{
		MaxParticipants:  &max,
		ParticipantCount: 2,
	}))
	require.NoError(t, err)
	require.Equal(t, AffordanceJoinLeave, display.Affordance.Kind)
	require.True(t, display.Affordance.Disabled)
}

func TestBuildDisplayEventAtCapacityViewerJoined(t *testing.T) {
	max := 2
	display, err := BuildDisplay(basePost(&model.EventDetail{
		MaxParticipants:  &max,
		ParticipantCount: 2,
		ViewerJoined:     true,
	}))
	require.NoError(t, err)
	// the viewer holds one of the spots and may still leave
	require.False(t, display.Affordance.Disabled)
}

func TestBuildDisplayPoll(t *testing.T) {
	display, err := BuildDisplay(basePost(&model.PollDetail{
		Question: "Which day?",
		Options:  []string{"Monday", "Friday"},
		Results:  []int{1, 0},
	}))
	require.NoError(t, err)
	require.Equal(t, AffordanceVote, display.Affordance.Kind)
	require.False(t, display.Affordance.Disabled)
	require.Equal(t, []int{1, 0}, display.Aggregate.VoteCounts)
	require.Equal(t, []float64{100, 0}, display.Aggregate.VotePercentages)
	require.Equal(t, 1, *display.Aggregate.TotalVotes)
}

func TestBuildDisplayPollAlreadyVoted(t *testing.T) {
	display, err := BuildDisplay(basePost(&model.PollDetail{
		Options:    []string{"Monday", "Friday"},
		Results:    []int{1, 0},
		ViewerVote: &model.PollVote{OptionIndex: 0},
	}))
	require.NoError(t, err)
	require.True(t, display.Affordance.Disabled)
}

func TestBuildDisplayPollEnded(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	display, err := BuildDisplay(basePost(&model.PollDetail{
		Options: []string{"Monday", "Friday"},
		Results: []int{0, 0},
		EndDate: &past,
	}))
	require.NoError(t, err)
	require.True(t, display.Affordance.Disabled)
}

func TestBuildDisplayFeedback(t *testing.T) {
	display, err := BuildDisplay(basePost(&model.FeedbackDetail{
		Description: "Semester survey",
	}))
	require.NoError(t, err)
	require.Equal(t, AffordanceForm, display.Affordance.Kind)
	require.False(t, display.Affordance.Disabled)
	require.Nil(t, display.Aggregate.VoteCounts)
	require.Nil(t, display.Aggregate.ParticipantCount)
}

func TestBuildDisplayFeedbackResponded(t *testing.T) {
	display, err := BuildDisplay(basePost(&model.FeedbackDetail{
		ViewerResponded: true,
	}))
	require.NoError(t, err)
	require.True(t, display.Affordance.Disabled)
}

func TestBuildDisplayUnknownVariant(t *testing.T) {
	_, err := BuildDisplay(&model.Post{Id: 1})
	require.Error(t, err)
}

func TestBuildDisplaysMapsEveryPost(t *testing.T) {
	displays, err := BuildDisplays([]*model.Post{
		basePost(model.GeneralDetail{}),
		basePost(&model.PollDetail{Options: []string{"A"}, Results: []int{0}}),
	})
	require.NoError(t, err)
	require.Len(t, displays, 2)
	require.Equal(t, AffordanceNone, displays[0].Affordance.Kind)
	require.Equal(t, AffordanceVote, displays[1].Affordance.Kind)
}
