package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/alnifu/orgsync-web-sub000/model"
)

// Database is the only surface permitted to issue remote reads/writes
// against the hosted backend.
type Database interface {
	PostDatabase
	InteractionDatabase
	OrgDatabase
	UserDatabase
	GetSQLDB() *sql.DB
	Close() error
}

type CreateEventDetail struct {
	StartDate       time.Time
	EndDate         time.Time
	Location        string
	MaxParticipants *int
}

type CreatePollDetail struct {
	Question       string
	Options        []string
	MultipleChoice bool
	EndDate        *time.Time
}

type CreateFeedbackDetail struct {
	Description string
	Fields      []model.FormField
	Deadline    *time.Time
	Anonymous   bool
}

// CreatePost carries the base row plus at most one side detail matching
// Type. The store must insert both in one transaction.
type CreatePost struct {
	AuthorId string
	OrgId    *int64
	Title    string
	Content  string
	Tags     []string
	Status   model.PostStatus
	IsPinned bool
	Type     model.PostType
	Event    *CreateEventDetail
	Poll     *CreatePollDetail
	Feedback *CreateFeedbackDetail
}

// UpdatePost is a patch: nil fields are left untouched. The post type is
// immutable and deliberately absent.
type UpdatePost struct {
	Title    *string
	Content  *string
	Tags     []string
	Status   *model.PostStatus
	IsPinned *bool
}

type PostSortField string

const (
	SortByCreatedAt PostSortField = "created_at"
	SortByLikeCount PostSortField = "like_count"
	SortByViewCount PostSortField = "view_count"
)

type IntFilter struct {
	Val int64 `json:"val"`
}

type PostQueryOpts struct {
	// ViewerId loads the viewer's own interactions (like/vote/join/response)
	// alongside the post. Empty skips those joins.
	ViewerId string
}

type PostsListQueryOpts struct {
	Limit    int16
	ViewerId string
}

type PostsListQuery struct {
	OrgIds     []int64
	Tag        string
	Status     *model.PostStatus
	Type       *model.PostType
	SearchText string
	AuthorId   string

	SortField PostSortField
	// From + LastId page most-recent ordering
	From   *time.Time
	LastId string
	// MaxLikes + LastId page most-popular ordering
	MaxLikes *IntFilter
	// MaxViews + LastId page most-viewed ordering
	MaxViews *IntFilter

	*PostsListQueryOpts
}

type PostDatabase interface {
	CreatePost(ctx context.Context, req *CreatePost) (postId int64, err error)
	GetPostById(ctx context.Context, id int64, opts *PostQueryOpts) (*model.Post, error)
	GetPosts(ctx context.Context, query *PostsListQuery) ([]*model.Post, error)
	UpdatePost(ctx context.Context, id int64, patch *UpdatePost) error
	DeletePost(ctx context.Context, id int64) error
}

type InteractionDatabase interface {
	// Likes: reversible presence rows
	CreateLike(ctx context.Context, userId string, postId int64) error
	DeleteLike(ctx context.Context, userId string, postId int64) error
	GetLike(ctx context.Context, userId string, postId int64) (bool, error)
	GetLikeCount(ctx context.Context, postId int64) (int, error)

	// Poll votes: insert-once
	CreateVote(ctx context.Context, userId string, postId int64, optionIndex int) error
	GetVote(ctx context.Context, userId string, postId int64) (*model.PollVote, error)
	// GetVoteTallies recomputes the per-option counts from the vote rows.
	// The returned slice is index-aligned with the poll's options.
	GetVoteTallies(ctx context.Context, postId int64, numOptions int) ([]int, error)

	// Form responses: insert-once
	CreateFormResponse(ctx context.Context, response *model.FormResponse) error
	GetFormResponse(ctx context.Context, userId string, postId int64) (*model.FormResponse, error)
	GetFormResponses(ctx context.Context, postId int64) ([]*model.FormResponse, error)

	// Event participants: join/leave set. AddParticipant fails with
	// ErrEventFull once the event's cap is reached.
	AddParticipant(ctx context.Context, userId string, postId int64) error
	RemoveParticipant(ctx context.Context, userId string, postId int64) error
	GetParticipants(ctx context.Context, postId int64) ([]*model.EventParticipant, error)

	// IncrementViewCount invokes the backend's increment_view_count procedure
	IncrementViewCount(ctx context.Context, postId int64) error

	GetLeaderboard(ctx context.Context, orgId *int64, limit int16) ([]*model.LeaderboardEntry, error)
}

type CreateOrg struct {
	Name        string
	Description string
	Category    string
	LogoUrl     string
	ParentId    *int64
	CreatorId   string
}

type GetOrgsQueryOpts struct {
	// ForUserId resolves each org's membership role for the given user
	ForUserId string
}

type OrgDatabase interface {
	CreateOrg(ctx context.Context, req *CreateOrg) (orgId int64, err error)
	GetOrgsByIds(ctx context.Context, ids []int64, opts *GetOrgsQueryOpts) ([]*model.OrgWithMemberStatus, error)

	CreateMembership(ctx context.Context, membership *model.Membership) error
	DeleteMembership(ctx context.Context, userId string, orgId int64) error
	GetMembership(ctx context.Context, userId string, orgId int64) (*model.Membership, error)
	GetMembershipsForUser(ctx context.Context, userId string) ([]*model.Membership, error)

	// Backend procedures: multi-step role/org mutations run server-side
	PromoteToOfficer(ctx context.Context, orgId int64, userId string) error
	DemoteToMember(ctx context.Context, orgId int64, userId string) error
	DeleteOrganization(ctx context.Context, orgId int64, confirmationCode string) error
}

type UserDatabase interface {
	CreateUser(context.Context, *model.User) error
	GetUser(context.Context, string) (*model.User, error)
}
