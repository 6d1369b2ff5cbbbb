package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/audit"
)

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// context keys handlers may set to refine the recorded audit entry
const (
	auditActionKey = "auditAction"
	auditObjectKey = "auditObjectID"
)

var methodActions = map[string]string{
	http.MethodPost:   audit.ActionCreate,
	http.MethodPut:    audit.ActionUpdate,
	http.MethodPatch:  audit.ActionUpdate,
	http.MethodDelete: audit.ActionDelete,
}

// auditMiddleware records an audit entry for every mutating request,
// and for any request whose handler set auditActionKey (e.g. exports).
func auditMiddleware(svc audit.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			action, record := methodActions[ctx.Request().Method]

			err := next(ctx)

			if a, ok := ctx.Get(auditActionKey).(string); ok {
				action = a
				record = true
			}
			if !record {
				return err
			}
			objectID := ctx.Param("id")
			if id, ok := ctx.Get(auditObjectKey).(string); ok {
				objectID = id
			}

			entry := audit.Entry{
				Action:     action,
				ObjectType: objectTypeFromPath(ctx.Path()),
				ObjectID:   objectID,
				Status:     audit.StatusSuccess,
			}
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				entry.ActorID = claims.Subject
				entry.ActorEmail = claims.Email
			}
			if err != nil {
				entry.Status = audit.StatusFailure
				entry.Metadata = map[string]string{"error": err.Error()}
			}
			svc.Record(entry)

			return err
		}
	}
}

// objectTypeFromPath extracts the resource segment, e.g. "/v1/chapters/:id" -> "chapters".
func objectTypeFromPath(path string) string {
	path = strings.TrimPrefix(path, "/v1/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
