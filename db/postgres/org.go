package postgres

import (
	"context"
	"strings"

	db2 "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/alnifu/orgsync-web-sub000/model"
	"github.com/upper/db/v4"
)

type OrgDB struct {
	sess db.Session
}

func getOrgDB(sess db.Session) *OrgDB {
	return &OrgDB{sess}
}

func (odb *OrgDB) CreateOrg(ctx context.Context, req *db2.CreateOrg) (int64, error) {
	var orgId int64
	err := odb.sess.TxContext(ctx, func(sess db.Session) error {
		row, err := sess.SQL().QueryRowContext(ctx, `
INSERT INTO organization (name, description, category, logo_url, parent_id)
	VALUES (?, ?, ?, ?, ?)
	RETURNING id`,
			req.Name, req.Description, req.Category, req.LogoUrl, req.ParentId)
		if err != nil {
			return err
		}
		if err := row.Scan(&orgId); err != nil {
			return err
		}

		// creator starts as the org admin
		_, err = sess.SQL().
			InsertInto("membership").
			Columns("user_id", "org_id", "role").
			Values(req.CreatorId, orgId, model.RoleAdmin).
			ExecContext(ctx)
		return err
	}, nil)
	return orgId, err
}

// GetOrgsByIds gets orgs. nil ids gets all orgs
func (odb *OrgDB) GetOrgsByIds(ctx context.Context, ids []int64, opts *db2.GetOrgsQueryOpts) ([]*model.OrgWithMemberStatus, error) {
	roleColumn := db.Raw("'' AS member_role")
	if opts.ForUserId != "" {
		roleColumn = db.Raw("COALESCE((SELECT m.role FROM membership AS m WHERE m.org_id = o.id AND m.user_id = ?), '') AS member_role", opts.ForUserId)
	}

	selector := odb.sess.SQL().
		Select("o.id", "o.name", "o.description", "o.category", "o.logo_url", "o.parent_id", "o.created_at", roleColumn).
		From("organization AS o")
	if ids != nil {
		selector = selector.Where("o.id IN ?", ids)
	}

	var orgs []*model.OrgWithMemberStatus
	return orgs, selector.
		OrderBy("o.name").
		IteratorContext(ctx).
		All(&orgs)
}

func (odb *OrgDB) CreateMembership(ctx context.Context, membership *model.Membership) error {
	_, err := odb.sess.WithContext(ctx).
		Collection("membership").
		Insert(membership)
	if db2.IsDupKeyErr(err) {
		return db2.ErrDuplicate
	}
	return err
}

func (odb *OrgDB) DeleteMembership(ctx context.Context, userId string, orgId int64) error {
	return odb.sess.WithContext(ctx).
		Collection("membership").
		Find("user_id = ? AND org_id = ?", userId, orgId).
		Delete()
}

func (odb *OrgDB) GetMembership(ctx context.Context, userId string, orgId int64) (*model.Membership, error) {
	var membership model.Membership
	if err := odb.sess.SQL().
		Select("*").
		From("membership").
		Where("user_id = ? AND org_id = ?", userId, orgId).
		IteratorContext(ctx).
		One(&membership); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (odb *OrgDB) GetMembershipsForUser(ctx context.Context, userId string) ([]*model.Membership, error) {
	var memberships []*model.Membership
	err := odb.sess.WithContext(ctx).
		Collection("membership").
		Find("user_id = ?", userId).
		All(&memberships)
	return memberships, err
}

// The role/org mutations below run as backend procedures: promotion rewrites
// the role hierarchy and deletion cascades memberships and posts server-side.

func (odb *OrgDB) PromoteToOfficer(ctx context.Context, orgId int64, userId string) error {
	_, err := odb.sess.SQL().ExecContext(ctx, db.Raw(`SELECT promote_to_officer(?, ?)`, orgId, userId))
	return err
}

func (odb *OrgDB) DemoteToMember(ctx context.Context, orgId int64, userId string) error {
	_, err := odb.sess.SQL().ExecContext(ctx, db.Raw(`SELECT demote_to_member(?, ?)`, orgId, userId))
	return err
}

func (odb *OrgDB) DeleteOrganization(ctx context.Context, orgId int64, confirmationCode string) error {
	_, err := odb.sess.SQL().ExecContext(ctx, db.Raw(`SELECT delete_organization(?, ?)`, orgId, confirmationCode))
	if err != nil && strings.Contains(err.Error(), "confirmation") {
		return db2.ErrBadConfirmation
	}
	return err
}
