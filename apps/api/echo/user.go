package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/user"
)

var (
	errUsrNotFoundInCtx  = errors.New("user object not found in echo.Context")
	errNoPermsToSetRole  = "not enough rights to set this role"
	errPlatformRole      = "school users cannot be system admins"
	contextObjectKey     = "object"
)

type userApi struct {
	ServerDeps
	svc     user.ServiceInterface
	limiter *rateLimiter
}

func newUserApi(deps ServerDeps) *userApi {
	return &userApi{
		ServerDeps: deps,
		svc:        deps.Svcs.Users,
		limiter:    newRateLimiter(deps.Conf.RateLimit.LoginRPS, deps.Conf.RateLimit.LoginBurst),
	}
}

func registerUserAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := newUserApi(deps)

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login, api.limiter.middleware())

	// authed endpoints
	ag := ug.Group("", authed)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
	ag.GET("/roles", api.queryRoles)

	// platform users (system admins)
	sa := ag.Group("", systemAdminMiddleware())
	sa.GET("", api.queryAll)
	sa.POST("", api.createSystemAdmin)
}

func registerSchoolUserAPI(g *echo.Group, deps ServerDeps) {
	api := newUserApi(deps)

	ug := g.Group("/users")
	ug.POST("", api.create, rolesMiddleware(user.RolePrimaryAdmin))
	ug.GET("", api.query, rolesMiddleware(user.ManagerRoles...))
	ug.DELETE("", api.destroyMultiple, rolesMiddleware(user.RolePrimaryAdmin))

	// detail endpoints
	dg := ug.Group("/:id", ctxUserOrAdminMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, rolesMiddleware(user.RolePrimaryAdmin))
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), api.Conf, data.Username, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.Conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.Conf, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api *userApi) queryAll(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return paginated(ctx, []user.User{})
	}
	filter.Clean()
	filter.SchoolID = ctx.QueryParam("school_id")

	users, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return paginated(ctx, users)
}

func (api *userApi) createSystemAdmin(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	data.Role = user.RoleSystemAdmin
	if err := data.Validate(ctx.Request().Context(), api.Validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.Validate, api.svc); err != nil {
		return err
	}
	if data.Role == user.RoleSystemAdmin {
		return core.NewFieldError("role", errPlatformRole)
	}

	// ctxUser cannot set a role > their own
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if user.RolePriority(data.Role) > user.RolePriority(ctxUsr.Role) {
		return core.NewFieldError("role", errNoPermsToSetRole)
	}

	data.SchoolID = getContextSchool(ctx).ID
	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return paginated(ctx, []user.User{})
	}
	filter.Clean()
	filter.SchoolID = getContextSchool(ctx).ID

	users, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return paginated(ctx, users)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, ok := ctx.Get(contextObjectKey).(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, ok := ctx.Get(contextObjectKey).(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsSchoolAdmin() {
		// `IsActive`, `Role`, `Username` and `Email` can only be changed by admins
		if data.IsActive != nil || data.Role != "" || data.Username != "" || data.Email != "" {
			return errHttpForbidden
		}
	}

	if err := data.Validate(ctx.Request().Context(), usr, api.Validate, api.svc); err != nil {
		return err
	}
	if data.Role != usr.Role {
		if data.Role == user.RoleSystemAdmin {
			return core.NewFieldError("role", errPlatformRole)
		}
		// ctxUser cannot set a role > their own
		if user.RolePriority(data.Role) > user.RolePriority(ctxUsr.Role) {
			return core.NewFieldError("role", errNoPermsToSetRole)
		}
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, ok := ctx.Get(contextObjectKey).(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	// ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if usr.ID == ctxUsr.ID || user.RolePriority(usr.Role) > user.RolePriority(ctxUsr.Role) {
		return errHttpForbidden
	}

	if _, err := api.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.JSON(http.StatusOK, DeletedResponse{})
	}

	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	// only the users of this school, never the caller
	members, err := api.svc.Query(ctx.Request().Context(), user.QueryFilter{SchoolID: getContextSchool(ctx).ID})
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	allowed := make(map[string]bool, len(members))
	for _, m := range members {
		allowed[m.ID] = user.RolePriority(m.Role) <= user.RolePriority(ctxUsr.Role)
	}
	ids := make([]string, 0, len(query.IDs))
	for _, id := range query.IDs {
		if id == ctxUsr.ID {
			return errHttpForbidden
		}
		if allowed[id] {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ctx.JSON(http.StatusOK, DeletedResponse{})
	}

	n, err := api.svc.Delete(ctx.Request().Context(), ids...)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return ctx.JSON(http.StatusOK, DeletedResponse{Deleted: n})
}

// ctxUserOrAdminMiddleware loads the `:id` user of the school when the caller is that user or an admin.
func ctxUserOrAdminMiddleware(svc user.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			id := ctx.Param("id")
			if id == ctxUsr.ID || ctxUsr.IsSchoolAdmin() {
				usr, err := svc.GetByID(ctx.Request().Context(), id)
				if err == nil && usr.SchoolID == getContextSchool(ctx).ID {
					ctx.Set(contextObjectKey, usr)
					return next(ctx)
				} else if err != nil && !core.IsNotFound(err) {
					return errors.Wrap(err, "finding user by ID")
				}
			}
			return errHttpNotFound
		}
	}
}
