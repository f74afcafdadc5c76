package routes

import (
	"context"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/middleware"
	"github.com/alnifu/orgsync-web-sub000/model"
	"github.com/alnifu/orgsync-web-sub000/util"
)

type userRoutes struct {
	db appDb.Database
}

func AddUserRoutes(group *gin.RouterGroup, db appDb.Database, authClient *auth.Client) {
	routes := userRoutes{db: db}
	users := group.Group("/users")
	users.PUT("", middleware.GenAuth(db, authClient, &middleware.AuthConfig{AccountNotRequired: true}),
		util.HandlerWrapper(routes.createUser, &util.HandlerOpts{}))
	users.GET("/me", middleware.GenAuth(db, authClient, &middleware.AuthConfig{}),
		util.HandlerWrapper(routes.getCurrentUser, &util.HandlerOpts{}))
}

type createUserReq struct {
	DisplayName string `json:"displayName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
}

func (ur *userRoutes) createUser(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	var req createUserReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	uid := middleware.MustGetToken(c).UID
	if err := ur.db.CreateUser(ctx, &model.User{
		Id:          uid,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Avatar:      util.Avatar(uid),
	}); err != nil {
		if appDb.IsDupKeyErr(err) {
			return nil, &util.HTTPError{
				Status:  http.StatusConflict,
				Message: "account already exists",
			}
		}
		return nil, util.BuildDbHTTPErr(err)
	}
	return nil, nil
}

func (ur *userRoutes) getCurrentUser(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	return middleware.MustGetUser(c), nil
}
