package prescription

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/auth"
	"github.com/dosetrack/dosetrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/prescriptions", h.Create, auth.RequireRole(auth.RoleDoctor))
	api.GET("/prescriptions/mine", h.ListOwn, auth.RequireRole(auth.RolePatient))
	api.GET("/prescriptions/issued", h.ListIssued, auth.RequireRole(auth.RoleDoctor))
	api.GET("/prescriptions/:id", h.Get, auth.RequireRole(auth.RoleDoctor, auth.RoleSupervisor))
	api.GET("/prescriptions/:id/line-items", h.ListLineItems, auth.RequireRole(auth.RoleDoctor, auth.RoleSupervisor))
}

func (h *Handler) Create(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return apperr.E(apperr.Unauthorized, "not authenticated")
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.E(apperr.Validation, "invalid request body")
	}
	// The issuing doctor is always the caller.
	result, err := h.svc.Create(c.Request().Context(), actor.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid prescription id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListOwn(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return apperr.E(apperr.Unauthorized, "not authenticated")
	}
	page := pagination.FromContext(c)
	prescriptions, total, err := h.svc.ListByPatient(c.Request().Context(), actor.ID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(prescriptions, total, page.Limit, page.Offset))
}

func (h *Handler) ListIssued(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return apperr.E(apperr.Unauthorized, "not authenticated")
	}
	page := pagination.FromContext(c)
	prescriptions, total, err := h.svc.ListByDoctor(c.Request().Context(), actor.ID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(prescriptions, total, page.Limit, page.Offset))
}

func (h *Handler) ListLineItems(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid prescription id")
	}
	items, err := h.svc.ListLineItems(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
