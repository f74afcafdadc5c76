package app

import (
	"context"
	"time"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
	"github.com/alnifu/orgsync-web-sub000/util"
)

// InteractionService owns the per-(user, post) interaction lifecycle. Every
// kind starts at no-interaction and moves to interacted-once; likes are the
// only kind that can move back. The acting user is always passed in
// explicitly.
type InteractionService struct {
	db appDb.Database
}

func NewInteractionService(db appDb.Database) *InteractionService {
	return &InteractionService{db: db}
}

// CastVote validates the option index, rejects double voting, inserts the
// vote row and returns tallies recomputed from the full vote set. The first
// vote is never overwritten.
func (is *InteractionService) CastVote(ctx context.Context, user *model.User, postId int64, optionIndex int) (*model.PollDetail, error) {
	post, err := is.db.GetPostById(ctx, postId, &appDb.PostQueryOpts{ViewerId: user.Id})
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	poll, ok := post.Detail.(*model.PollDetail)
	if !ok {
		return nil, ErrWrongPostType
	}
	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		return nil, ErrOptionOutOfRange
	}
	if poll.Ended(time.Now()) {
		return nil, ErrPollEnded
	}
	if poll.ViewerVote != nil {
		return nil, ErrAlreadyVoted
	}

	if err := is.db.CreateVote(ctx, user.Id, postId, optionIndex); err != nil {
		if appDb.IsDupKeyErr(err) {
			// two tabs raced the check; the constraint kept the first vote
			return nil, ErrAlreadyVoted
		}
		return nil, err
	}

	// never increment locally: recompute from the authoritative rows
	tallies, err := is.db.GetVoteTallies(ctx, postId, len(poll.Options))
	if err != nil {
		return nil, err
	}
	poll.Results = tallies
	poll.ViewerVote = &model.PollVote{UserId: user.Id, PostId: postId, OptionIndex: optionIndex}
	return poll, nil
}

// ToggleLike flips the user's like row and reports the new state plus the
// count delta the caller may apply to its displayed total. The cheap
// reversible case is the one place an optimistic +-1 is allowed.
func (is *InteractionService) ToggleLike(ctx context.Context, user *model.User, postId int64) (liked bool, delta int, err error) {
	hasLike, err := is.db.GetLike(ctx, user.Id, postId)
	if err != nil {
		return false, 0, err
	}
	if hasLike {
		if err := is.db.DeleteLike(ctx, user.Id, postId); err != nil {
			return true, 0, err
		}
		return false, -1, nil
	}
	if err := is.db.CreateLike(ctx, user.Id, postId); err != nil {
		if appDb.IsDupKeyErr(err) {
			// already liked from another tab; state is liked, nothing changed
			return true, 0, nil
		}
		return false, 0, err
	}
	return true, 1, nil
}

// SubmitForm validates responses against the post's field definitions and
// inserts once. Validation failures never reach the store, and a prior
// response blocks the write before it is attempted.
func (is *InteractionService) SubmitForm(ctx context.Context, user *model.User, postId int64, responses map[string]string) error {
	post, err := is.db.GetPostById(ctx, postId, &appDb.PostQueryOpts{ViewerId: user.Id})
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}
	feedback, ok := post.Detail.(*model.FeedbackDetail)
	if !ok {
		return ErrWrongPostType
	}
	if feedback.Closed(time.Now()) {
		return ErrFormClosed
	}
	if feedback.ViewerResponded {
		return ErrAlreadyAnswered
	}
	if validationErr := ValidateFormResponses(feedback.Fields, responses); validationErr != nil {
		return validationErr
	}

	response := &model.FormResponse{
		UserId:    user.Id,
		PostId:    postId,
		Responses: responses,
	}
	if feedback.Anonymous {
		response.Alias = util.GenerateAlias()
	}
	if err := is.db.CreateFormResponse(ctx, response); err != nil {
		if appDb.IsDupKeyErr(err) {
			return ErrAlreadyAnswered
		}
		return err
	}
	return nil
}

// JoinEvent adds the user to the participant set. Joining a full event and
// re-joining are both rejected before any count is touched; the store
// re-checks capacity under lock.
func (is *InteractionService) JoinEvent(ctx context.Context, user *model.User, postId int64) (*model.EventDetail, error) {
	post, err := is.db.GetPostById(ctx, postId, &appDb.PostQueryOpts{ViewerId: user.Id})
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	event, ok := post.Detail.(*model.EventDetail)
	if !ok {
		return nil, ErrWrongPostType
	}
	if event.ViewerJoined {
		return event, nil
	}
	if event.Full() {
		return nil, ErrEventFull
	}

	if err := is.db.AddParticipant(ctx, user.Id, postId); err != nil {
		switch {
		case appDb.IsDupKeyErr(err):
			// already joined elsewhere; treat as the no-op it is
		case err == appDb.ErrEventFull:
			return nil, ErrEventFull
		default:
			return nil, err
		}
	}
	return is.reloadEvent(ctx, user, postId)
}

func (is *InteractionService) LeaveEvent(ctx context.Context, user *model.User, postId int64) (*model.EventDetail, error) {
	post, err := is.db.GetPostById(ctx, postId, &appDb.PostQueryOpts{ViewerId: user.Id})
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if _, ok := post.Detail.(*model.EventDetail); !ok {
		return nil, ErrWrongPostType
	}
	if err := is.db.RemoveParticipant(ctx, user.Id, postId); err != nil {
		return nil, err
	}
	return is.reloadEvent(ctx, user, postId)
}

// reloadEvent re-reads the post so the returned participant count comes from
// the rows, not from local arithmetic.
func (is *InteractionService) reloadEvent(ctx context.Context, user *model.User, postId int64) (*model.EventDetail, error) {
	post, err := is.db.GetPostById(ctx, postId, &appDb.PostQueryOpts{ViewerId: user.Id})
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	event, ok := post.Detail.(*model.EventDetail)
	if !ok {
		return nil, ErrWrongPostType
	}
	return event, nil
}
