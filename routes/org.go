package routes

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/alnifu/orgsync-web-sub000/controllers"
	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/middleware"
	"github.com/alnifu/orgsync-web-sub000/model"
	"github.com/alnifu/orgsync-web-sub000/util"
)

type orgRoutes struct {
	db         appDb.Database
	controller *controllers.OrgController
}

func AddOrgRoutes(group *gin.RouterGroup, db appDb.Database, controller *controllers.OrgController, authClient *auth.Client) {
	routes := orgRoutes{db: db, controller: controller}
	orgs := group.Group("/orgs", middleware.GenAuth(db, authClient, &middleware.AuthConfig{SessionNotRequired: true}))
	orgs.GET("/:id", util.HandlerWrapper(routes.getOrgById, &util.HandlerOpts{}))
	orgs.GET("/:id/pos", util.HandlerWrapper(routes.getOrgPos, &util.HandlerOpts{}))

	orgs.PUT("", middleware.RequireAccount(), util.HandlerWrapper(routes.createOrg, &util.HandlerOpts{}))
	orgs.POST("/:id/memberships", middleware.RequireAccount(), util.HandlerWrapper(routes.joinOrg, &util.HandlerOpts{}))
	orgs.DELETE("/:id/memberships", middleware.RequireAccount(), util.HandlerWrapper(routes.leaveOrg, &util.HandlerOpts{}))
	orgs.POST("/:id/members/:userId/promote", middleware.RequireAccount(), util.HandlerWrapper(routes.promoteMember, &util.HandlerOpts{}))
	orgs.POST("/:id/members/:userId/demote", middleware.RequireAccount(), util.HandlerWrapper(routes.demoteMember, &util.HandlerOpts{}))
	orgs.POST("/:id/delete-code", middleware.RequireAccount(), util.HandlerWrapper(routes.requestDeleteCode, &util.HandlerOpts{}))
	orgs.DELETE("/:id", middleware.RequireAccount(), util.HandlerWrapper(routes.deleteOrg, &util.HandlerOpts{}))

	memberships := group.Group("/memberships", middleware.GenAuth(db, authClient, &middleware.AuthConfig{}))
	memberships.GET("", util.HandlerWrapper(routes.getMemberships, &util.HandlerOpts{}))
}

type createOrgReq struct {
	Name        string `json:"name" binding:"required,min=3"`
	Description string `json:"description"`
	Category    string `json:"category" binding:"required"`
	LogoUrl     string `json:"logoUrl" binding:"omitempty,url"`
	ParentId    *int64 `json:"parentId"`
}

func (or *orgRoutes) createOrg(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	var req createOrgReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	id, httpErr := or.controller.CreateOrg(ctx, &appDb.CreateOrg{
		Name:        util.XSSSanitize(req.Name),
		Description: util.XSSSanitize(req.Description),
		Category:    req.Category,
		LogoUrl:     req.LogoUrl,
		ParentId:    req.ParentId,
		CreatorId:   middleware.MustGetUser(c).Id,
	})
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{
		"id": id,
	}, nil
}

func (or *orgRoutes) getOrgById(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	return or.controller.GetOrgById(ctx, id, &appDb.GetOrgsQueryOpts{
		ForUserId: middleware.GetUserIdMaybe(c),
	})
}

func (or *orgRoutes) getOrgPos(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	return or.controller.GetOrgPos(ctx, id)
}

func (or *orgRoutes) joinOrg(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	err := or.db.CreateMembership(ctx, &model.Membership{
		UserId: middleware.MustGetUser(c).Id,
		OrgId:  id,
		Role:   model.RoleMember,
	})
	if err != nil && !appDb.IsDupKeyErr(err) {
		return nil, util.BuildDbHTTPErr(err)
	}
	return nil, nil
}

func (or *orgRoutes) leaveOrg(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	if err := or.db.DeleteMembership(ctx, middleware.MustGetUser(c).Id, id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return nil, nil
}

func (or *orgRoutes) getMemberships(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	memberships, err := or.db.GetMembershipsForUser(ctx, middleware.MustGetUser(c).Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return memberships, nil
}

func (or *orgRoutes) promoteMember(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	if httpErr := or.controller.PromoteToOfficer(ctx, middleware.MustGetUser(c), id, c.Param("userId")); httpErr != nil {
		return nil, httpErr
	}
	return nil, nil
}

func (or *orgRoutes) demoteMember(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	if httpErr := or.controller.DemoteToMember(ctx, middleware.MustGetUser(c), id, c.Param("userId")); httpErr != nil {
		return nil, httpErr
	}
	return nil, nil
}

func (or *orgRoutes) requestDeleteCode(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	code, httpErr := or.controller.RequestDeleteCode(ctx, middleware.MustGetUser(c), id)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{
		"confirmationCode": code,
	}, nil
}

type deleteOrgReq struct {
	ConfirmationCode string `json:"confirmationCode" binding:"required"`
}

func (or *orgRoutes) deleteOrg(ctx context.Context, c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	var req deleteOrgReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	if httpErr := or.controller.ConfirmDelete(ctx, middleware.MustGetUser(c), id, req.ConfirmationCode); httpErr != nil {
		return nil, httpErr
	}
	return nil, nil
}
