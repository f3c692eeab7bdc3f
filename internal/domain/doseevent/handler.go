package doseevent

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/dose-events/:id/action", h.ApplyAction, auth.RequireRole(auth.RolePatient))
	api.GET("/dose-events/today", h.ListForToday, auth.RequireRole(auth.RolePatient))
	api.GET("/patients/:id/dose-events/by-month", h.ListByMonth)
	api.GET("/doctors/me/adherence", h.ScoresForDoctor, auth.RequireRole(auth.RoleDoctor))
}

type actionInput struct {
	Action Action `json:"action"`
}

func (h *Handler) ApplyAction(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return apperr.E(apperr.Unauthorized, "not authenticated")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid dose event id")
	}
	var in actionInput
	if err := c.Bind(&in); err != nil {
		return apperr.E(apperr.Validation, "invalid request body")
	}
	e, err := h.svc.ApplyAction(c.Request().Context(), actor, id, in.Action)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListForToday(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return apperr.E(apperr.Unauthorized, "not authenticated")
	}
	views, err := h.svc.ListForToday(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// ListByMonth serves doctors and supervisors for any patient; a
// patient can only read their own history.
func (h *Handler) ListByMonth(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return apperr.E(apperr.Unauthorized, "not authenticated")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid patient id")
	}
	if actor.Role == auth.RolePatient && actor.ID != id {
		return apperr.E(apperr.Forbidden, "patients can only view their own dose events")
	}
	groups, err := h.svc.ListByMonth(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *Handler) ScoresForDoctor(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return apperr.E(apperr.Unauthorized, "not authenticated")
	}
	scores, err := h.svc.ScoresForDoctor(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scores)
}
