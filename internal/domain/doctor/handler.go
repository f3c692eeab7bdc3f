package doctor

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
	api.POST("/doctors", h.Create, auth.RequireRole(auth.RoleSupervisor))
	api.GET("/doctors/me/patients", h.ListOwnPatients, auth.RequireRole(auth.RoleDoctor))
	api.GET("/doctors/:id", h.Get)
	api.GET("/search/doctors/:query", h.Search)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.E(apperr.Validation, "invalid request body")
	}
	d, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid doctor id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListOwnPatients(c echo.Context) error {
	a, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return apperr.E(apperr.Unauthorized, "not authenticated")
	}
	roster, err := h.svc.ListPatients(c.Request().Context(), a.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roster)
}

func (h *Handler) Search(c echo.Context) error {
	doctors, err := h.svc.Search(c.Request().Context(), c.Param("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doctors)
}
