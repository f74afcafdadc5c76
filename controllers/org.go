package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alnifu/orgsync-web-sub000/config"
	appDb "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
	"github.com/alnifu/orgsync-web-sub000/util"
	"github.com/alnifu/orgsync-web-sub000/util/log"
)

type orgTree struct {
	adjList       map[int64][]*model.Organization
	parentAdjList map[int64]*model.Organization
	mostRecentOrg *time.Time
	createdAt     *time.Time
}

func (ot *orgTree) isNewer(tree *orgTree) bool {
	if ot.mostRecentOrg == nil || tree.mostRecentOrg == nil {
		return true
	}
	return ot.mostRecentOrg.After(*tree.mostRecentOrg)
}

const TreeUpdateInterval = time.Minute * config.OrgDirectoryRefreshIntervalMin

// deleteCode is a pending org-deletion confirmation. The code must be echoed
// back before it expires for the delete to run.
type deleteCode struct {
	code      string
	expiresAt time.Time
}

// OrgController serves the org directory from a periodically refreshed
// in-memory tree and owns the privileged org mutations (role changes,
// deletion).
type OrgController struct {
	db             appDb.OrgDatabase
	cachedTree     *orgTree
	cachedTreeLock sync.Mutex
	updateTicker   *time.Ticker

	deleteCodes     map[int64]deleteCode
	deleteCodesLock sync.Mutex
}

func NewOrgController(c context.Context, db appDb.OrgDatabase) (*OrgController, error) {
	controller := &OrgController{
		db:          db,
		deleteCodes: make(map[int64]deleteCode),
	}
	if err := controller.updateCachedTree(c); err != nil {
		return nil, err
	}

	updateTicker := time.NewTicker(TreeUpdateInterval)
	controller.updateTicker = updateTicker
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Log.WithField("recovered", r).
					Error("recovered while updating cached org tree")
			}
		}()
		for range updateTicker.C {
			controller.attemptToUpdateCachedTree(c)
		}
	}()

	return controller, nil
}

func (oc *OrgController) CreateOrg(c context.Context, req *appDb.CreateOrg) (int64, *util.HTTPError) {
	orgId, err := oc.db.CreateOrg(c, req)
	if err != nil {
		return -1, util.BuildDbHTTPErr(err)
	}
	go oc.attemptToUpdateCachedTree(c)

	return orgId, nil
}

func (oc *OrgController) GetOrgById(c context.Context, id int64, opts *appDb.GetOrgsQueryOpts) (*model.OrgWithMemberStatus, *util.HTTPError) {
	orgs, err := oc.db.GetOrgsByIds(c, []int64{id}, opts)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if len(orgs) == 0 {
		return nil, &util.NotFoundHTTPErr
	}
	return orgs[0], nil
}

func (oc *OrgController) GetOrgPos(c context.Context, id int64) (*model.OrgPosInTree, *util.HTTPError) {
	oc.cachedTreeLock.Lock()
	tree := oc.cachedTree
	oc.cachedTreeLock.Unlock()

	children := []*model.Organization{}
	if tree.adjList[id] != nil {
		children = tree.adjList[id]
	}

	path := []*model.Organization{} // DON'T return nil slice
	for parent := tree.parentAdjList[id]; parent != nil; parent = tree.parentAdjList[parent.Id] {
		path = append(path, parent)
	}

	return &model.OrgPosInTree{
		Children: children,
		Path:     path,
	}, nil
}

// PromoteToOfficer runs the backend promote procedure after verifying the
// caller administers the org.
func (oc *OrgController) PromoteToOfficer(c context.Context, caller *model.User, orgId int64, targetUserId string) *util.HTTPError {
	if httpErr := oc.requireAdmin(c, caller, orgId); httpErr != nil {
		return httpErr
	}
	if err := oc.db.PromoteToOfficer(c, orgId, targetUserId); err != nil {
		return util.BuildDbHTTPErr(err)
	}
	return nil
}

func (oc *OrgController) DemoteToMember(c context.Context, caller *model.User, orgId int64, targetUserId string) *util.HTTPError {
	if httpErr := oc.requireAdmin(c, caller, orgId); httpErr != nil {
		return httpErr
	}
	if err := oc.db.DemoteToMember(c, orgId, targetUserId); err != nil {
		return util.BuildDbHTTPErr(err)
	}
	return nil
}

// RequestDeleteCode issues the confirmation code an admin must echo back to
// delete the org. A new request replaces any outstanding code.
func (oc *OrgController) RequestDeleteCode(c context.Context, caller *model.User, orgId int64) (string, *util.HTTPError) {
	if httpErr := oc.requireAdmin(c, caller, orgId); httpErr != nil {
		return "", httpErr
	}

	code := uuid.NewString()
	oc.deleteCodesLock.Lock()
	oc.deleteCodes[orgId] = deleteCode{
		code:      code,
		expiresAt: time.Now().Add(time.Minute * config.DeleteCodeTTLMin),
	}
	oc.deleteCodesLock.Unlock()

	return code, nil
}

// ConfirmDelete deletes the org once the caller echoes a live confirmation
// code. The code is consumed whether or not the backend delete succeeds.
func (oc *OrgController) ConfirmDelete(c context.Context, caller *model.User, orgId int64, code string) *util.HTTPError {
	if httpErr := oc.requireAdmin(c, caller, orgId); httpErr != nil {
		return httpErr
	}

	oc.deleteCodesLock.Lock()
	pending, ok := oc.deleteCodes[orgId]
	delete(oc.deleteCodes, orgId)
	oc.deleteCodesLock.Unlock()

	if !ok || pending.code != code || time.Now().After(pending.expiresAt) {
		return &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "confirmation code is missing, wrong, or expired",
		}
	}

	if err := oc.db.DeleteOrganization(c, orgId, code); err != nil {
		return util.BuildDbHTTPErr(err)
	}
	go oc.attemptToUpdateCachedTree(c)

	return nil
}

func (oc *OrgController) requireAdmin(c context.Context, caller *model.User, orgId int64) *util.HTTPError {
	membership, err := oc.db.GetMembership(c, caller.Id, orgId)
	if err != nil {
		return util.BuildDbHTTPErr(err)
	}
	if membership == nil || membership.Role != model.RoleAdmin {
		return &util.HTTPError{
			Status:  http.StatusForbidden,
			Message: "must administer the organization",
		}
	}
	return nil
}

func (oc *OrgController) attemptToUpdateCachedTree(c context.Context) {
	if err := oc.updateCachedTree(c); err != nil {
		log.Log.WithError(err).Error("failed to update cached org tree")
	}
}

func (oc *OrgController) updateCachedTree(c context.Context) error {
	allOrgs, err := oc.db.GetOrgsByIds(c, nil, &appDb.GetOrgsQueryOpts{})
	if err != nil {
		return err
	}
	newTree := buildTreeFromOrgs(orgsWithMemberStatusesToOrgs(allOrgs))

	oc.cachedTreeLock.Lock()
	defer oc.cachedTreeLock.Unlock()
	if oc.cachedTree == nil || newTree.isNewer(oc.cachedTree) {
		oc.cachedTree = newTree
	}
	return nil
}

func orgsWithMemberStatusesToOrgs(orgsWithStatuses []*model.OrgWithMemberStatus) []*model.Organization {
	orgs := make([]*model.Organization, len(orgsWithStatuses))
	for i, org := range orgsWithStatuses {
		orgs[i] = org.Organization
	}
	return orgs
}

func buildTreeFromOrgs(orgs []*model.Organization) *orgTree {
	var mostRecent *time.Time
	adjList := make(map[int64][]*model.Organization)
	idToOrg := make(map[int64]*model.Organization)
	parentAdjList := make(map[int64]*model.Organization)
	for _, org := range orgs {
		idToOrg[org.Id] = org
		if mostRecent == nil || org.CreatedAt.After(*mostRecent) {
			mostRecent = org.CreatedAt
		}
		adjList[org.ParentId.AsInt()] = append(adjList[org.ParentId.AsInt()], org)
	}

	for _, org := range orgs {
		parentAdjList[org.Id] = idToOrg[org.ParentId.AsInt()]
	}
	now := time.Now()
	return &orgTree{
		createdAt:     &now,
		adjList:       adjList,
		parentAdjList: parentAdjList,
		mostRecentOrg: mostRecent,
	}
}
