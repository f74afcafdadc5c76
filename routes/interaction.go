package routes

import (
	"context"
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/alnifu/orgsync-web-sub000/app"
	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/middleware"
	"github.com/alnifu/orgsync-web-sub000/util"
)

type interactionRoutes struct {
	db           appDb.Database
	interactions *app.InteractionService
}

func AddInteractionRoutes(group *gin.RouterGroup, db appDb.Database, interactions *app.InteractionService, authClient *auth.Client) {
	routes := interactionRoutes{db: db, interactions: interactions}
	posts := group.Group("/posts", middleware.GenAuth(db, authClient, &middleware.AuthConfig{}))
	posts.POST("/:id/likes", util.HandlerWrapper(routes.toggleLike, &util.HandlerOpts{}))
	posts.POST("/:id/votes", util.HandlerWrapper(routes.castVote, &util.HandlerOpts{}))
	posts.POST("/:id/responses", util.HandlerWrapper(routes.submitForm, &util.HandlerOpts{}))
	posts.POST("/:id/participants", util.HandlerWrapper(routes.joinEvent, &util.HandlerOpts{}))
	posts.DELETE("/:id/participants", util.HandlerWrapper(routes.leaveEvent, &util.HandlerOpts{}))
}

// buildInteractionHTTPErr maps the interaction error taxonomy onto statuses.
// Validation and constraint failures keep their messages; anything else is
// an opaque database error.
func buildInteractionHTTPErr(err error) *util.HTTPError {
	var validationErr *app.ValidationError
	if errors.As(err, &validationErr) {
		return &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: validationErr.Error(),
			Fields:  validationErr.Fields,
		}
	}
	var constraintErr *app.ConstraintError
	if errors.As(err, &constraintErr) {
		return &util.HTTPError{
			Status:  http.StatusConflict,
			Message: constraintErr.Message,
		}
	}
	switch {
	case errors.Is(err, app.ErrNotFound):
		return &util.NotFoundHTTPErr
	case errors.Is(err, app.ErrWrongPostType):
		return &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		}
	}
	return util.BuildDbHTTPErr(err)
}

func (ir *interactionRoutes) toggleLike(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	liked, delta, err := ir.interactions.ToggleLike(ctx, middleware.MustGetUser(c), id)
	if err != nil {
		return nil, buildInteractionHTTPErr(err)
	}
	return gin.H{
		"liked": liked,
		"delta": delta,
	}, nil
}

type castVoteReq struct {
	OptionIndex *int `json:"optionIndex" binding:"required"`
}

func (ir *interactionRoutes) castVote(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	var req castVoteReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	poll, err := ir.interactions.CastVote(ctx, middleware.MustGetUser(c), id, *req.OptionIndex)
	if err != nil {
		return nil, buildInteractionHTTPErr(err)
	}
	return gin.H{
		"results":     poll.Results,
		"percentages": poll.Percentages(),
		"totalVotes":  poll.TotalVotes(),
	}, nil
}

type submitFormReq struct {
	Responses map[string]string `json:"responses" binding:"required"`
}

func (ir *interactionRoutes) submitForm(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	var req submitFormReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	if err := ir.interactions.SubmitForm(ctx, middleware.MustGetUser(c), id, req.Responses); err != nil {
		return nil, buildInteractionHTTPErr(err)
	}
	return nil, nil
}

func (ir *interactionRoutes) joinEvent(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	event, err := ir.interactions.JoinEvent(ctx, middleware.MustGetUser(c), id)
	if err != nil {
		return nil, buildInteractionHTTPErr(err)
	}
	return event, nil
}

func (ir *interactionRoutes) leaveEvent(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	event, err := ir.interactions.LeaveEvent(ctx, middleware.MustGetUser(c), id)
	if err != nil {
		return nil, buildInteractionHTTPErr(err)
	}
	return event, nil
}
