package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/db/inmem"
	"github.com/alnifu/orgsync-web-sub000/model"
)

var (
	alice = &model.User{Id: "alice", DisplayName: "Alice"}
	bob   = &model.User{Id: "bob", DisplayName: "Bob"}
)

func newTestService(t *testing.T) (*InteractionService, *inmem.InMemDB) {
	t.Helper()
	db := inmem.NewDatabase()
	require.NoError(t, db.CreateUser(context.Background(), alice))
	require.NoError(t, db.CreateUser(context.Background(), bob))
	return NewInteractionService(db), db
}

func mustCreatePoll(t *testing.T, db *inmem.InMemDB, options []string) int64 {
	t.Helper()
	id, err := db.CreatePost(context.Background(), &appDb.CreatePost{
		AuthorId: alice.Id,
		Title:    "Pick a meeting day",
		Status:   model.StatusPublished,
		Type:     model.PostTypePoll,
		Poll: &appDb.CreatePollDetail{
			Question: "Which day works?",
			Options:  options,
		},
	})
	require.NoError(t, err)
	return id
}

func mustCreateEvent(t *testing.T, db *inmem.InMemDB, maxParticipants *int) int64 {
	t.Helper()
	start := time.Now().Add(24 * time.Hour)
	end := start.Add(2 * time.Hour)
	id, err := db.CreatePost(context.Background(), &appDb.CreatePost{
		AuthorId: alice.Id,
		Title:    "General assembly",
		Status:   model.StatusPublished,
		Type:     model.PostTypeEvent,
		Event: &appDb.CreateEventDetail{
			StartDate:       start,
			EndDate:         end,
			Location:        "Room 101",
			MaxParticipants: maxParticipants,
		},
	})
	require.NoError(t, err)
	return id
}

func TestCastVote(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()
	postId := mustCreatePoll(t, db, []string{"Monday", "Friday"})

	poll, err := service.CastVote(ctx, alice, postId, 0)
	require.NoError(t, err)
	require.Equal(t, []int{1, 0}, poll.Results)
	require.InDelta(t, 100, poll.Percentages()[0], 0.001)
	require.InDelta(t, 0, poll.Percentages()[1], 0.001)
}

func TestCastVoteTwiceKeepsFirstVote(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()
	postId := mustCreatePoll(t, db, []string{"Monday", "Friday"})

	_, err := service.CastVote(ctx, alice, postId, 0)
	require.NoError(t, err)

	_, err = service.CastVote(ctx, alice, postId, 1)
	require.ErrorIs(t, err, ErrAlreadyVoted)

	vote, err := db.GetVote(ctx, alice.Id, postId)
	require.NoError(t, err)
	require.Equal(t, 0, vote.OptionIndex)

	tallies, err := db.GetVoteTallies(ctx, postId, 2)
	require.NoError(t, err)
	require.Equal(t, []int{1, 0}, tallies)
}

func TestCastVoteOptionOutOfRange(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()
	postId := mustCreatePoll(t, db, []string{"Monday", "Friday"})

	_, err := service.CastVote(ctx, alice, postId, 2)
	require.ErrorIs(t, err, ErrOptionOutOfRange)

	tallies, err := db.GetVoteTallies(ctx, postId, 2)
	require.NoError(t, err)
	require.Equal(t, []int{0, 0}, tallies)
}

func TestCastVoteOnGeneralPost(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()
	postId, err := db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: alice.Id,
		Title:    "Announcement",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)

	_, err = service.CastVote(ctx, bob, postId, 0)
	require.ErrorIs(t, err, ErrWrongPostType)
}

func TestToggleLikeRoundTrips(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()
	postId, err := db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: alice.Id,
		Title:    "Announcement",
		Status:   model.StatusPublished,
		Type:     model.PostTypeGeneral,
	})
	require.NoError(t, err)

	liked, delta, err := service.ToggleLike(ctx, bob, postId)
	require.NoError(t, err)
	require.True(t, liked)
	require.Equal(t, 1, delta)

	liked, delta, err = service.ToggleLike(ctx, bob, postId)
	require.NoError(t, err)
	require.False(t, liked)
	require.Equal(t, -1, delta)

	count, err := db.GetLikeCount(ctx, postId)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestJoinEventAtCapacity(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()
	capacity := 1
	postId := mustCreateEvent(t, db, &capacity)

	event, err := service.JoinEvent(ctx, alice, postId)
	require.NoError(t, err)
	require.Equal(t, 1, event.ParticipantCount)

	_, err = service.JoinEvent(ctx, bob, postId)
	require.ErrorIs(t, err, ErrEventFull)

	participants, err := db.GetParticipants(ctx, postId)
	require.NoError(t, err)
	require.Len(t, participants, 1)
}

func TestJoinEventTwiceIsNoOp(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()
	postId := mustCreateEvent(t, db, nil)

	_, err := service.JoinEvent(ctx, alice, postId)
	require.NoError(t, err)
	event, err := service.JoinEvent(ctx, alice, postId)
	require.NoError(t, err)
	require.Equal(t, 1, event.ParticipantCount)
	require.True(t, event.ViewerJoined)
}

func TestLeaveEvent(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()
	postId := mustCreateEvent(t, db, nil)

	_, err := service.JoinEvent(ctx, alice, postId)
	require.NoError(t, err)
	event, err := service.LeaveEvent(ctx, alice, postId)
	require.NoError(t, err)
	require.Equal(t, 0, event.ParticipantCount)
	require.False(t, event.ViewerJoined)
}

func TestSubmitFormOnce(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()
	postId, err := db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: alice.Id,
		Title:    "Member survey",
		Status:   model.StatusPublished,
		Type:     model.PostTypeFeedback,
		Feedback: &appDb.CreateFeedbackDetail{
			Description: "Tell us how the semester went",
			Fields: []model.FormField{
				{Type: model.FieldTypeText, Question: "Highlights?", Required: true},
			},
		},
	})
	require.NoError(t, err)

	require.NoError(t, service.SubmitForm(ctx, bob, postId, map[string]string{"Highlights?": "the hackathon"}))

	err = service.SubmitForm(ctx, bob, postId, map[string]string{"Highlights?": "changed my mind"})
	require.ErrorIs(t, err, ErrAlreadyAnswered)

	responses, err := db.GetFormResponses(ctx, postId)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Equal(t, "the hackathon", responses[0].Responses["Highlights?"])
}

func TestSubmitFormValidationNeverWrites(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()
	postId, err := db.CreatePost(ctx, &appDb.CreatePost{
		AuthorId: alice.Id,
		Title:    "Contact form",
		Status:   model.StatusPublished,
		Type:     model.PostTypeFeedback,
		Feedback: &appDb.CreateFeedbackDetail{
			Description: "Reach out",
			Fields: []model.FormField{
				{Type: model.FieldTypeEmail, Question: "Your email", Required: true},
			},
		},
	})
	require.NoError(t, err)

	err = service.SubmitForm(ctx, bob, postId, map[string]string{"Your email": "not-an-email"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Fields, "Your email")

	responses, err := db.GetFormResponses(ctx, postId)
	require.NoError(t, err)
	require.Empty(t, responses)
}
