package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/db/inmem"
	"github.com/alnifu/orgsync-web-sub000/model"
)

func newTestController(t *testing.T) (*OrgController, *inmem.InMemDB) {
	t.Helper()
	db := inmem.NewDatabase()
	controller, err := NewOrgController(context.Background(), db)
	require.NoError(t, err)
	return controller, db
}

func TestGetOrgPos(t *testing.T) {
	controller, db := newTestController(t)
	ctx := context.Background()

	parentId, err := db.CreateOrg(ctx, &appDb.CreateOrg{Name: "Student Council", Category: "governance", CreatorId: "alice"})
	require.NoError(t, err)
	childId, err := db.CreateOrg(ctx, &appDb.CreateOrg{Name: "Events Committee", Category: "governance", ParentId: &parentId, CreatorId: "alice"})
	require.NoError(t, err)
	require.NoError(t, controller.updateCachedTree(ctx))

	childPos, httpErr := controller.GetOrgPos(ctx, childId)
	require.Nil(t, httpErr)
	require.Len(t, childPos.Path, 1)
	require.Equal(t, parentId, childPos.Path[0].Id)
	require.Empty(t, childPos.Children)

	parentPos, httpErr := controller.GetOrgPos(ctx, parentId)
	require.Nil(t, httpErr)
	require.Len(t, parentPos.Children, 1)
	require.Equal(t, childId, parentPos.Children[0].Id)
	require.Empty(t, parentPos.Path)
}

func TestPromoteRequiresAdmin(t *testing.T) {
	controller, db := newTestController(t)
	ctx := context.Background()
	admin := &model.User{Id: "alice"}
	member := &model.User{Id: "bob"}

	orgId, err := db.CreateOrg(ctx, &appDb.CreateOrg{Name: "Chess Club", Category: "hobby", CreatorId: admin.Id})
	require.NoError(t, err)
	require.NoError(t, db.CreateMembership(ctx, &model.Membership{UserId: member.Id, OrgId: orgId, Role: model.RoleMember}))

	httpErr := controller.PromoteToOfficer(ctx, member, orgId, admin.Id)
	require.NotNil(t, httpErr)
	require.Equal(t, http.StatusForbidden, httpErr.Status)

	httpErr = controller.PromoteToOfficer(ctx, admin, orgId, member.Id)
	require.Nil(t, httpErr)

	membership, err := db.GetMembership(ctx, member.Id, orgId)
	require.NoError(t, err)
	require.Equal(t, model.RoleOfficer, membership.Role)

	httpErr = controller.DemoteToMember(ctx, admin, orgId, member.Id)
	require.Nil(t, httpErr)
	membership, err = db.GetMembership(ctx, member.Id, orgId)
	require.NoError(t, err)
	require.Equal(t, model.RoleMember, membership.Role)
}

func TestDeleteOrgNeedsMatchingCode(t *testing.T) {
	controller, db := newTestController(t)
	ctx := context.Background()
	admin := &model.User{Id: "alice"}

	orgId, err := db.CreateOrg(ctx, &appDb.CreateOrg{Name: "Chess Club", Category: "hobby", CreatorId: admin.Id})
	require.NoError(t, err)

	code, httpErr := controller.RequestDeleteCode(ctx, admin, orgId)
	require.Nil(t, httpErr)
	require.NotEmpty(t, code)

	httpErr = controller.ConfirmDelete(ctx, admin, orgId, "wrong-code")
	require.NotNil(t, httpErr)
	require.Equal(t, http.StatusBadRequest, httpErr.Status)

	// the bad attempt consumed the code; a fresh one is required
	httpErr = controller.ConfirmDelete(ctx, admin, orgId, code)
	require.NotNil(t, httpErr)

	code, httpErr = controller.RequestDeleteCode(ctx, admin, orgId)
	require.Nil(t, httpErr)
	httpErr = controller.ConfirmDelete(ctx, admin, orgId, code)
	require.Nil(t, httpErr)

	orgs, err := db.GetOrgsByIds(ctx, []int64{orgId}, &appDb.GetOrgsQueryOpts{})
	require.NoError(t, err)
	require.Empty(t, orgs)
}

func TestDeleteOrgForbiddenForNonAdmin(t *testing.T) {
	controller, db := newTestController(t)
	ctx := context.Background()

	orgId, err := db.CreateOrg(ctx, &appDb.CreateOrg{Name: "Chess Club", Category: "hobby", CreatorId: "alice"})
	require.NoError(t, err)

	_, httpErr := controller.RequestDeleteCode(ctx, &model.User{Id: "mallory"}, orgId)
	require.NotNil(t, httpErr)
	require.Equal(t, http.StatusForbidden, httpErr.Status)
}
