package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// Operation names an endpoint-level action subject to role checks.
type Operation string

const (
	OpIssueCreate       Operation = "issue:create"
	OpIssueList         Operation = "issue:list"
	OpIssueGet          Operation = "issue:get"
	OpIssueUpdate       Operation = "issue:update"
	OpIssueDelete       Operation = "issue:delete"
	OpIssueAssign       Operation = "issue:assign"
	OpIssueUpdateStatus Operation = "issue:update_status"
	OpIssueComment      Operation = "issue:comment"
	OpUserList          Operation = "user:list"
	OpUserGet           Operation = "user:get"
	OpUserListByRole    Operation = "user:list_by_role"
	OpUserUpdate        Operation = "user:update"
	OpUserDelete        Operation = "user:delete"
)

// permissions is the single role × operation table consulted per request.
// Per-record ownership rules (reporter, assignee) are enforced a layer
// deeper, in the issue service.
var permissions = map[Operation]map[domain.Role]bool{
	OpIssueCreate:       {domain.RoleEmployee: true, domain.RoleAdmin: true, domain.RoleTechnician: true},
	OpIssueList:         {domain.RoleEmployee: true, domain.RoleAdmin: true, domain.RoleTechnician: true},
	OpIssueGet:          {domain.RoleEmployee: true, domain.RoleAdmin: true, domain.RoleTechnician: true},
	OpIssueUpdate:       {domain.RoleEmployee: true, domain.RoleAdmin: true},
	OpIssueDelete:       {domain.RoleAdmin: true},
	OpIssueAssign:       {domain.RoleAdmin: true},
	OpIssueUpdateStatus: {domain.RoleTechnician: true, domain.RoleAdmin: true},
	OpIssueComment:      {domain.RoleEmployee: true, domain.RoleAdmin: true, domain.RoleTechnician: true},
	OpUserList:          {domain.RoleAdmin: true},
	OpUserGet:           {domain.RoleEmployee: true, domain.RoleAdmin: true, domain.RoleTechnician: true},
	OpUserListByRole:    {domain.RoleAdmin: true},
	OpUserUpdate:        {domain.RoleAdmin: true},
	OpUserDelete:        {domain.RoleAdmin: true},
}

// Allowed reports whether the role may perform the operation.
func Allowed(role domain.Role, op Operation) bool {
	return permissions[op][role]
}

// Require returns middleware permitting only roles allowed for op.
func Require(op Operation) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !Allowed(principal.User.Role, op) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
