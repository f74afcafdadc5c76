package routes

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/middleware"
	"github.com/alnifu/orgsync-web-sub000/util"
)

const leaderboardSize = 25

type leaderboardRoutes struct {
	db appDb.Database
}

func AddLeaderboardRoutes(group *gin.RouterGroup, db appDb.Database, authClient *auth.Client) {
	routes := leaderboardRoutes{db: db}
	leaderboard := group.Group("/leaderboard",
		middleware.GenAuth(db, authClient, &middleware.AuthConfig{SessionNotRequired: true}))
	leaderboard.GET("", util.HandlerWrapper(routes.getLeaderboard, &util.HandlerOpts{}))
}

// getLeaderboard returns the campus-wide ranking, or a single org's when
// ?orgId= is given. Points are recomputed from interaction rows on every
// call.
func (lr *leaderboardRoutes) getLeaderboard(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	var orgId *int64
	if rawOrgId := c.Query("orgId"); rawOrgId != "" {
		id, httpErr := util.ParseId(rawOrgId)
		if httpErr != nil {
			return nil, httpErr
		}
		orgId = &id
	}

	entries, err := lr.db.GetLeaderboard(ctx, orgId, leaderboardSize)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return entries, nil
}
