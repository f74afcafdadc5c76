package routes

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/alnifu/orgsync-web-sub000/util"
)

func AddHealthCheckRoutes(group *gin.RouterGroup) {
	health := group.Group("/health")
	health.GET("", util.HandlerWrapper(AliveCheck, &util.HandlerOpts{}))
}

func AliveCheck(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	return nil, nil
}
