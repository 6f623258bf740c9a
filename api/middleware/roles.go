package middleware

import (
	"net/http"

	"github.com/calderacafe/brewstock-backend/api/responses"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

var roleRank = map[enums.StaffRole]int{
	enums.StaffRoleStaff:   1,
	enums.StaffRoleManager: 2,
	enums.StaffRoleOwner:   3,
}

// RequireRole rejects requests whose actor ranks below the given role.
// Owners pass every check, managers pass manager and staff checks.
func RequireRole(role enums.StaffRole, logg *logger.Logger) func(http.Handler) http.Handler {
	required := roleRank[role]
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := enums.StaffRole(RoleFromContext(r.Context()))
			if roleRank[actor] < required {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
