package model

import (
	"time"
)

type PostType string

const (
	PostTypeGeneral  PostType = "general"
	PostTypeEvent    PostType = "event"
	PostTypePoll     PostType = "poll"
	PostTypeFeedback PostType = "feedback"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

// Post is the base content entity. Detail is the variant side-data selected
// by post type at normalization; every consumer dispatches on the Detail
// union instead of re-inspecting the raw type tag.
type Post struct {
	Id        int64            `json:"id"`
	Author    *DisplayableUser `json:"author"`
	OrgId     *int64           `json:"orgId,omitempty"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Tags      []string         `json:"tags"`
	Status    PostStatus       `json:"status"`
	IsPinned  bool             `json:"isPinned"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	ViewCount int64            `json:"viewCount"`
	LikeCount int              `json:"likeCount"`
	// ViewerLiked reflects the querying user's like row, when one was asked for
	ViewerLiked bool   `json:"viewerLiked"`
	Detail      Detail `json:"detail"`
}

func (p *Post) Type() PostType {
	return p.Detail.PostType()
}

func (p *Post) CanEdit(user *User) bool {
	return user != nil && (user.IsAdmin || user.Id == p.Author.User.Id)
}

// Detail is the closed variant union. Exactly one implementation exists per
// post type; sealed() keeps the set closed to this package.
type Detail interface {
	PostType() PostType
	sealed()
}

type GeneralDetail struct{}

func (GeneralDetail) PostType() PostType { return PostTypeGeneral }
func (GeneralDetail) sealed()            {}

type EventDetail struct {
	StartDate        time.Time     `json:"startDate"`
	EndDate          time.Time     `json:"endDate"`
	Location         string        `json:"location"`
	MaxParticipants  *int          `json:"maxParticipants,omitempty"`
	ParticipantCount int           `json:"participantCount"`
	ViewerJoined     bool          `json:"viewerJoined"`
}

func (*EventDetail) PostType() PostType { return PostTypeEvent }
func (*EventDetail) sealed()            {}

// Full reports whether the participant cap has been reached. Events without
// a cap are never full.
func (ed *EventDetail) Full() bool {
	return ed.MaxParticipants != nil && ed.ParticipantCount >= *ed.MaxParticipants
}

type PollDetail struct {
	Question       string     `json:"question,omitempty"`
	Options        []string   `json:"options"`
	MultipleChoice bool       `json:"multipleChoice"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	// Results is the redundant tally, recomputed from vote rows after every
	// write. Index-aligned with Options.
	Results []int `json:"results"`
	// ViewerVote holds the querying user's vote, when one was asked for
	ViewerVote *PollVote `json:"viewerVote,omitempty"`
}

func (*PollDetail) PostType() PostType { return PostTypePoll }
func (*PollDetail) sealed()            {}

func (pd *PollDetail) TotalVotes() int {
	total := 0
	for _, count := range pd.Results {
		total += count
	}
	return total
}

// Percentages derives per-option percentage of total, index-aligned with
// Options. Defined as all zeros when there are no votes yet.
func (pd *PollDetail) Percentages() []float64 {
	percentages := make([]float64, len(pd.Options))
	total := pd.TotalVotes()
	if total == 0 {
		return percentages
	}
	for i := range pd.Options {
		count := 0
		if i < len(pd.Results) {
			count = pd.Results[i]
		}
		percentages[i] = float64(count) / float64(total) * 100
	}
	return percentages
}

func (pd *PollDetail) Ended(now time.Time) bool {
	return pd.EndDate != nil && now.After(*pd.EndDate)
}

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextArea FieldType = "textarea"
)

type FormField struct {
	Type     FieldType `json:"type"`
	Question string    `json:"question"`
	Required bool      `json:"required"`
}

type FeedbackDetail struct {
	Description string      `json:"description"`
	Fields      []FormField `json:"fields"`
	Deadline    *time.Time  `json:"deadline,omitempty"`
	// ViewerResponded is set when the querying user already submitted
	ViewerResponded bool `json:"viewerResponded"`
	// Anonymous feedback hides responder identities behind aliases
	Anonymous bool `json:"anonymous"`
}

func (*FeedbackDetail) PostType() PostType { return PostTypeFeedback }
func (*FeedbackDetail) sealed()            {}

func (fd *FeedbackDetail) Closed(now time.Time) bool {
	return fd.Deadline != nil && now.After(*fd.Deadline)
}
