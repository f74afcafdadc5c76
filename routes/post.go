package routes

import (
	"context"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/alnifu/orgsync-web-sub000/app"
	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/middleware"
	"github.com/alnifu/orgsync-web-sub000/model"
	"github.com/alnifu/orgsync-web-sub000/util"
)

// SessionHeader carries the client's opaque view-dedup session id.
const SessionHeader = "X-Session-Id"

type postRoutes struct {
	db    appDb.Database
	views *app.ViewTracker
}

func AddPostRoutes(group *gin.RouterGroup, db appDb.Database, views *app.ViewTracker, authClient *auth.Client) {
	routes := postRoutes{db: db, views: views}
	posts := group.Group("/posts", middleware.GenAuth(db, authClient, &middleware.AuthConfig{SessionNotRequired: true}))
	posts.GET("", util.HandlerWrapper(routes.getPosts, &util.HandlerOpts{}))
	posts.GET("/:id", util.HandlerWrapper(routes.getPostById, &util.HandlerOpts{}))
	posts.GET("/:id/responses", middleware.RequireAccount(), util.HandlerWrapper(routes.getFormResponses, &util.HandlerOpts{}))
	posts.GET("/:id/participants", middleware.RequireAccount(), util.HandlerWrapper(routes.getParticipants, &util.HandlerOpts{}))
	posts.PUT("", middleware.RequireAccount(), util.HandlerWrapper(routes.createPost, &util.HandlerOpts{}))
	posts.PATCH("/:id", middleware.RequireAccount(), util.HandlerWrapper(routes.updatePost, &util.HandlerOpts{}))
	posts.DELETE("/:id", middleware.RequireAccount(), util.HandlerWrapper(routes.deletePost, &util.HandlerOpts{}))
}

type createEventReq struct {
	StartDate       time.Time `json:"startDate" binding:"required"`
	EndDate         time.Time `json:"endDate" binding:"required"`
	Location        string    `json:"location" binding:"required"`
	MaxParticipants *int      `json:"maxParticipants" binding:"omitempty,gt=0"`
}

type createPollReq struct {
	Question       string     `json:"question" binding:"required"`
	Options        []string   `json:"options" binding:"required,min=2,dive,required"`
	MultipleChoice bool       `json:"multipleChoice"`
	EndDate        *time.Time `json:"endDate"`
}

type createFeedbackReq struct {
	Description string            `json:"description" binding:"required"`
	Fields      []model.FormField `json:"fields" binding:"required,min=1"`
	Deadline    *time.Time        `json:"deadline"`
	Anonymous   bool              `json:"anonymous"`
}

type createPostReq struct {
	Title    string             `json:"title" binding:"required"`
	Content  string             `json:"content"`
	OrgId    *int64             `json:"orgId"`
	Tags     []string           `json:"tags"`
	Status   model.PostStatus   `json:"status" binding:"omitempty,oneof=draft published"`
	IsPinned bool               `json:"isPinned"`
	Type     model.PostType     `json:"type" binding:"required,oneof=general event poll feedback"`
	Event    *createEventReq    `json:"event"`
	Poll     *createPollReq     `json:"poll"`
	Feedback *createFeedbackReq `json:"feedback"`
}

func (pr *postRoutes) createPost(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	var req createPostReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	if httpErr := validateSideDetail(&req); httpErr != nil {
		return nil, httpErr
	}

	user := middleware.MustGetUser(c)
	if req.OrgId != nil {
		membership, err := pr.db.GetMembership(ctx, user.Id, *req.OrgId)
		if err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
		if membership == nil || !membership.Role.AtLeastOfficer() {
			return nil, &util.HTTPError{
				Status:  http.StatusForbidden,
				Message: "must be an officer of the organization to post",
			}
		}
	}

	status := req.Status
	if status == "" {
		status = model.StatusPublished
	}

	createPost := &appDb.CreatePost{
		AuthorId: user.Id,
		OrgId:    req.OrgId,
		Title:    util.XSSSanitize(req.Title),
		Content:  util.XSSSanitize(req.Content),
		Tags:     req.Tags,
		Status:   status,
		IsPinned: req.IsPinned,
		Type:     req.Type,
	}
	switch req.Type {
	case model.PostTypeEvent:
		createPost.Event = &appDb.CreateEventDetail{
			StartDate:       req.Event.StartDate,
			EndDate:         req.Event.EndDate,
			Location:        util.XSSSanitize(req.Event.Location),
			MaxParticipants: req.Event.MaxParticipants,
		}
	case model.PostTypePoll:
		createPost.Poll = &appDb.CreatePollDetail{
			Question:       util.XSSSanitize(req.Poll.Question),
			Options:        sanitizeAll(req.Poll.Options),
			MultipleChoice: req.Poll.MultipleChoice,
			EndDate:        req.Poll.EndDate,
		}
	case model.PostTypeFeedback:
		createPost.Feedback = &appDb.CreateFeedbackDetail{
			Description: util.XSSSanitize(req.Feedback.Description),
			Fields:      req.Feedback.Fields,
			Deadline:    req.Feedback.Deadline,
			Anonymous:   req.Feedback.Anonymous,
		}
	}

	id, err := pr.db.CreatePost(ctx, createPost)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{
		"id": id,
	}, nil
}

// validateSideDetail rejects a type/detail mismatch before anything is sent
func validateSideDetail(req *createPostReq) *util.HTTPError {
	var ok bool
	switch req.Type {
	case model.PostTypeGeneral:
		ok = req.Event == nil && req.Poll == nil && req.Feedback == nil
	case model.PostTypeEvent:
		ok = req.Event != nil && req.Poll == nil && req.Feedback == nil
	case model.PostTypePoll:
		ok = req.Poll != nil && req.Event == nil && req.Feedback == nil
	case model.PostTypeFeedback:
		ok = req.Feedback != nil && req.Event == nil && req.Poll == nil
	}
	if !ok {
		return &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "post detail does not match the post type",
		}
	}
	return nil
}

func sanitizeAll(vals []string) []string {
	out := make([]string, len(vals))
	for i, val := range vals {
		out[i] = util.XSSSanitize(val)
	}
	return out
}

// getPosts lists posts filtered by query params, newest first. Cursor-based
// continuation lives on the feed endpoint; this one serves filtered browse
// views (org page, tag page, search).
func (pr *postRoutes) getPosts(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	filter := app.PostFilter{
		Tag:        c.Query("tag"),
		SearchText: c.Query("search"),
	}
	if rawOrgId := c.Query("orgId"); rawOrgId != "" {
		orgId, httpErr := util.ParseId(rawOrgId)
		if httpErr != nil {
			return nil, httpErr
		}
		filter.OrgIds = []int64{orgId}
	}
	if rawType := c.Query("type"); rawType != "" {
		postType := model.PostType(rawType)
		switch postType {
		case model.PostTypeGeneral, model.PostTypeEvent, model.PostTypePoll, model.PostTypeFeedback:
			filter.PostType = &postType
		default:
			return nil, &util.HTTPError{
				Status:  http.StatusBadRequest,
				Message: "unknown post type",
			}
		}
	}
	status := model.StatusPublished
	filter.Status = &status

	cursor := &app.MostRecentCursor{PostFilter: filter}
	page, err := app.GetFeedPage(ctx, pr.db, middleware.GetUserMaybe(c), cursor, &app.PostCursorOpts{Limit: feedPageSize})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return page, nil
}

func (pr *postRoutes) getPostById(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	post, err := pr.db.GetPostById(ctx, id, &appDb.PostQueryOpts{ViewerId: middleware.GetUserIdMaybe(c)})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, &util.NotFoundHTTPErr
	}

	sessionId := c.GetHeader(SessionHeader)
	if sessionId == "" {
		sessionId = middleware.GetUserIdMaybe(c)
	}
	pr.views.RecordView(ctx, sessionId, id)

	display, err := app.BuildDisplay(post)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return display, nil
}

type updatePostReq struct {
	Title    *string           `json:"title" binding:"omitempty,min=1"`
	Content  *string           `json:"content"`
	Tags     []string          `json:"tags"`
	Status   *model.PostStatus `json:"status" binding:"omitempty,oneof=draft published archived"`
	IsPinned *bool             `json:"isPinned"`
}

func (pr *postRoutes) updatePost(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	var req updatePostReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	if _, httpErr := pr.mustGetEditablePost(ctx, c, id); httpErr != nil {
		return nil, httpErr
	}

	patch := &appDb.UpdatePost{
		Tags:     req.Tags,
		Status:   req.Status,
		IsPinned: req.IsPinned,
	}
	if req.Title != nil {
		title := util.XSSSanitize(*req.Title)
		patch.Title = &title
	}
	if req.Content != nil {
		content := util.XSSSanitize(*req.Content)
		patch.Content = &content
	}
	if err := pr.db.UpdatePost(ctx, id, patch); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return nil, nil
}

func (pr *postRoutes) deletePost(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	if _, httpErr := pr.mustGetEditablePost(ctx, c, id); httpErr != nil {
		return nil, httpErr
	}
	if err := pr.db.DeletePost(ctx, id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return nil, nil
}

// getFormResponses returns the submissions for a feedback post. Only the
// author or an org officer may read them; anonymous posts surface aliases
// instead of responder ids.
func (pr *postRoutes) getFormResponses(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	post, httpErr := pr.mustGetEditablePost(ctx, c, id)
	if httpErr != nil {
		return nil, httpErr
	}
	feedback, ok := post.Detail.(*model.FeedbackDetail)
	if !ok {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "post is not a feedback form",
		}
	}

	responses, err := pr.db.GetFormResponses(ctx, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if feedback.Anonymous {
		for _, response := range responses {
			response.UserId = ""
		}
	}
	return responses, nil
}

func (pr *postRoutes) getParticipants(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	participants, err := pr.db.GetParticipants(ctx, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return participants, nil
}

// mustGetEditablePost loads the post and checks the requester may modify it:
// the author, a site admin, or an officer of the post's org.
func (pr *postRoutes) mustGetEditablePost(ctx context.Context, c *gin.Context, id int64) (*model.Post, *util.HTTPError) {
	post, err := pr.db.GetPostById(ctx, id, &appDb.PostQueryOpts{})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, &util.NotFoundHTTPErr
	}

	user := middleware.MustGetUser(c)
	if post.CanEdit(user) {
		return post, nil
	}
	if post.OrgId != nil {
		membership, err := pr.db.GetMembership(ctx, user.Id, *post.OrgId)
		if err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
		if membership != nil && membership.Role.AtLeastOfficer() {
			return post, nil
		}
	}
	return nil, &util.HTTPError{
		Status:  http.StatusForbidden,
		Message: "cannot modify this post",
	}
}
