package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Role is the resolved identity band of a request, derived from Claims.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleCandidate Role = "candidate"
	RoleIntern    Role = "intern"
	RoleAdmin     Role = "admin"
)

// Area is a role-scoped route group.
type Area string

const (
	AreaPublic    Area = "public"
	AreaDashboard Area = "dashboard"
	AreaAdmin     Area = "admin"
)

// Redirect targets.
const (
	signInPath    = "/login"
	dashboardPath = "/dashboard"
	adminPath     = "/admin"
)

// Decision is the outcome of one gate evaluation.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Decide is the pure access decision for one navigation: which role may enter
// which area, and where to send it otherwise. Evaluated once per request; it
// holds no state beyond the resolved role.
//
//   - anonymous visitors only reach the public area; anywhere else sends them
//     to sign-in
//   - admins landing on the general dashboard belong in the admin area
//   - non-admins requesting the admin area are sent to the general dashboard
func Decide(role Role, area Area) Decision {
	switch area {
	case AreaPublic:
		return Decision{Allowed: true}
	case AreaDashboard:
		switch role {
		case RoleAnonymous:
			return Decision{RedirectTo: signInPath}
		case RoleAdmin:
			return Decision{RedirectTo: adminPath}
		}
		return Decision{Allowed: true}
	case AreaAdmin:
		switch role {
		case RoleAnonymous:
			return Decision{RedirectTo: signInPath}
		case RoleAdmin:
			return Decision{Allowed: true}
		}
		return Decision{RedirectTo: dashboardPath}
	}
	return Decision{RedirectTo: signInPath}
}

// ResolveRole maps Claims to the role band the gate decides on.
func ResolveRole(claims *Claims) Role {
	switch {
	case claims == nil:
		return RoleAnonymous
	case claims.IsAdmin:
		return RoleAdmin
	case claims.IsIntern:
		return RoleIntern
	case claims.IsCandidate:
		return RoleCandidate
	}
	return RoleAnonymous
}

// roleGateMiddleware applies the Decide outcome to a route group: requests the
// gate rejects get a 307 to the area they belong in.
func roleGateMiddleware(area Area) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			role := RoleAnonymous
			if claims, err := getContextClaims(ctx); err == nil {
				role = ResolveRole(&claims)
			}
			if d := Decide(role, area); !d.Allowed {
				return ctx.Redirect(http.StatusTemporaryRedirect, d.RedirectTo)
			}
			return next(ctx)
		}
	}
}

// registerAreas mounts the role-gated navigation areas. Auth is optional here:
// anonymous visitors must reach the gate to be redirected to sign-in.
func registerAreas(e *echo.Echo) {
	optjwt := middleware.JWTWithConfig(optionalJWTConfig)

	e.GET(signInPath, signInHome)

	dash := e.Group(dashboardPath, optjwt, roleGateMiddleware(AreaDashboard))
	dash.GET("", dashboardHome)

	adm := e.Group(adminPath, optjwt, roleGateMiddleware(AreaAdmin))
	adm.GET("", adminHome)
}

func signInHome(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Sign in to Stagi")
}

func dashboardHome(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to your dashboard!")
}

func adminHome(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Stagi admin!")
}
