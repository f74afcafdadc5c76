package model

import (
	"time"

	"github.com/alnifu/orgsync-web-sub000/db/dao"
)

type Organization struct {
	Id          int64         `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description"`
	Category    string        `db:"category" json:"category"`
	LogoUrl     string        `db:"logo_url" json:"logoUrl"`
	ParentId    dao.NullInt64 `db:"parent_id" json:"parentId"`
	CreatedAt   *time.Time    `db:"created_at" json:"createdAt"`
}

type OrgWithMemberStatus struct {
	*Organization
	// MemberRole is empty when the querying user is not a member
	MemberRole MemberRole `db:"member_role" json:"memberRole,omitempty"`
}

type MemberRole string

const (
	RoleMember  MemberRole = "MEMBER"
	RoleOfficer MemberRole = "OFFICER"
	RoleAdmin   MemberRole = "ADMIN"
)

func (r MemberRole) AtLeastOfficer() bool {
	return r == RoleOfficer || r == RoleAdmin
}

type Membership struct {
	UserId string     `db:"user_id" json:"userId"`
	OrgId  int64      `db:"org_id" json:"orgId"`
	Role   MemberRole `db:"role" json:"role"`
}

// OrgPosInTree locates an org inside the cached directory tree.
type OrgPosInTree struct {
	Children []*Organization `json:"children"`
	Path     []*Organization `json:"path"`
}
