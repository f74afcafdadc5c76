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

const feedPageSize = 20

type feedRoutes struct {
	db appDb.Database
}

func AddFeedRoutes(group *gin.RouterGroup, db appDb.Database, authClient *auth.Client) {
	routes := feedRoutes{db: db}
	feeds := group.Group("/feeds",
		middleware.GenAuth(db, authClient, &middleware.AuthConfig{SessionNotRequired: true}))
	feeds.POST("", util.HandlerWrapper(routes.getFeed, &util.HandlerOpts{}))
}

func (fr *feedRoutes) getFeed(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	var cursor app.TaggedUnionCursor
	if err := c.BindJSON(&cursor); err != nil {
		if errors.Is(err, app.UnknownCursorTypeErr) {
			return nil, &util.HTTPError{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			}
		}
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	page, err := app.GetFeedPage(ctx, fr.db, middleware.GetUserMaybe(c), &cursor, &app.PostCursorOpts{Limit: feedPageSize})
	if err != nil {
		if errors.Is(err, app.ErrLoginRequired) {
			return nil, &util.HTTPError{
				Status:  http.StatusUnauthorized,
				Message: err.Error(),
			}
		}
		return nil, util.BuildDbHTTPErr(err)
	}
	return page, nil
}
