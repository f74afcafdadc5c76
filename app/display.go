package app

import (
	"fmt"
	"time"

	"github.com/alnifu/orgsync-web-sub000/model"
)

type AffordanceKind string

const (
	AffordanceNone      AffordanceKind = "none"
	AffordanceJoinLeave AffordanceKind = "join-leave"
	AffordanceVote      AffordanceKind = "vote"
	AffordanceForm      AffordanceKind = "form"
)

// Affordance describes the one interaction the viewer may take on a post.
type Affordance struct {
	Kind AffordanceKind `json:"kind"`
	// Disabled means the affordance renders but cannot be acted on (event at
	// capacity, poll ended, form already answered)
	Disabled bool   `json:"disabled"`
	Reason   string `json:"reason,omitempty"`
}

// Aggregate is the derived count block shown next to the affordance.
type Aggregate struct {
	// LikeCount is always serialized: zero likes is a real value, not absence
	LikeCount        int       `json:"likeCount"`
	ParticipantCount *int      `json:"participantCount,omitempty"`
	MaxParticipants  *int      `json:"maxParticipants,omitempty"`
	VoteCounts       []int     `json:"voteCounts,omitempty"`
	VotePercentages  []float64 `json:"votePercentages,omitempty"`
	TotalVotes       *int      `json:"totalVotes,omitempty"`
}

type DisplayPost struct {
	*model.Post
	Affordance *Affordance `json:"affordance"`
	Aggregate  *Aggregate  `json:"aggregate"`
}

// BuildDisplay selects the interaction affordance and aggregate block for a
// normalized post. The dispatch is exhaustive over the variant union: an
// unhandled variant is an error, never a silently empty branch.
func BuildDisplay(post *model.Post) (*DisplayPost, error) {
	display := &DisplayPost{Post: post}

	switch detail := post.Detail.(type) {
	case model.GeneralDetail:
		display.Affordance = &Affordance{Kind: AffordanceNone}
		display.Aggregate = &Aggregate{LikeCount: post.LikeCount}

	case *model.EventDetail:
		affordance := &Affordance{Kind: AffordanceJoinLeave}
		if detail.Full() && !detail.ViewerJoined {
			affordance.Disabled = true
			affordance.Reason = "event is at capacity"
		}
		display.Affordance = affordance
		count := detail.ParticipantCount
		display.Aggregate = &Aggregate{
			ParticipantCount: &count,
			MaxParticipants:  detail.MaxParticipants,
		}

	case *model.PollDetail:
		affordance := &Affordance{Kind: AffordanceVote}
		switch {
		case detail.ViewerVote != nil:
			affordance.Disabled = true
			affordance.Reason = "already voted"
		case detail.Ended(time.Now()):
			affordance.Disabled = true
			affordance.Reason = "poll has ended"
		}
		display.Affordance = affordance
		total := detail.TotalVotes()
		display.Aggregate = &Aggregate{
			VoteCounts:      detail.Results,
			VotePercentages: detail.Percentages(),
			TotalVotes:      &total,
		}

	case *model.FeedbackDetail:
		affordance := &Affordance{Kind: AffordanceForm}
		switch {
		case detail.ViewerResponded:
			affordance.Disabled = true
			affordance.Reason = "already submitted"
		case detail.Closed(time.Now()):
			affordance.Disabled = true
			affordance.Reason = "deadline has passed"
		}
		display.Affordance = affordance
		// submission is terminal; feedback shows no aggregate
		display.Aggregate = &Aggregate{}

	default:
		return nil, fmt.Errorf("unhandled post detail variant %T", post.Detail)
	}

	return display, nil
}

// BuildDisplays maps BuildDisplay over a page of posts.
func BuildDisplays(posts []*model.Post) ([]*DisplayPost, error) {
	displays := make([]*DisplayPost, len(posts))
	for i, post := range posts {
		display, err := BuildDisplay(post)
		if err != nil {
			return nil, err
		}
		displays[i] = display
	}
	return displays, nil
}
