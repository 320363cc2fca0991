package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/license"
	"github.com/acfjba/platformdigital-sub000/core/school"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

// rolesMiddleware lets through the system admins and the users holding one of roles.
func rolesMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsSystemAdmin() || user.HasAnyRole(claims.Role, roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func systemAdminMiddleware() echo.MiddlewareFunc {
	return rolesMiddleware()
}

// tenantMiddleware loads the school of the `:school_id` param into the context.
// Users of another school get a 404 so that tenants cannot be enumerated.
func tenantMiddleware(svc *school.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			schoolID := ctx.Param("school_id")
			if !claims.IsSystemAdmin() && claims.SchoolID != schoolID {
				return errHttpNotFound
			}

			sch, err := svc.Get(ctx.Request().Context(), schoolID)
			if err != nil {
				if core.IsNotFound(err) {
					return errHttpNotFound
				}
				return errors.Wrap(err, "getting school")
			}
			if !sch.IsActive && !claims.IsSystemAdmin() {
				return errHttpNotFound
			}
			ctx.Set(contextSchoolKey, sch)
			return next(ctx)
		}
	}
}

// licenseMiddleware rejects school users with a 402 while their license is not usable.
func licenseMiddleware(svc *license.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsSystemAdmin() {
				return next(ctx)
			}
			if err := svc.CheckUsable(ctx.Request().Context(), getContextSchool(ctx).ID); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

func getContextSchool(ctx echo.Context) school.School {
	sch, _ := ctx.Get(contextSchoolKey).(school.School)
	return sch
}
