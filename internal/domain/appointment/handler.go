package appointment

import (
	"net/http"
	"strconv"

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
	api.GET("/appointments/mine", h.Upcoming, auth.RequireRole(auth.RolePatient))
	api.GET("/appointments/mine/past", h.Past, auth.RequireRole(auth.RolePatient))
	api.GET("/doctors/:id/appointments/:year/:month", h.ForDoctorMonth, auth.RequireRole(auth.RoleDoctor, auth.RoleSupervisor))
	api.POST("/appointments", h.Create, auth.RequireRole(auth.RoleSupervisor))
	api.DELETE("/appointments/stale", h.PurgeStale, auth.RequireRole(auth.RoleSupervisor))
}

func actor(c echo.Context) auth.Actor {
	a, _ := auth.ActorFromContext(c.Request().Context())
	return a
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.E(apperr.Validation, "invalid request body")
	}
	a, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Upcoming(c echo.Context) error {
	list, err := h.svc.Upcoming(c.Request().Context(), actor(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) Past(c echo.Context) error {
	list, err := h.svc.Past(c.Request().Context(), actor(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) ForDoctorMonth(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid doctor id")
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid year")
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid month")
	}

	// Doctors see their own calendar, supervisors anyone's.
	if a := actor(c); a.Role == auth.RoleDoctor && a.ID != doctorID {
		return apperr.E(apperr.Forbidden, "cannot view another doctor's appointments")
	}

	list, err := h.svc.ForDoctorMonth(c.Request().Context(), doctorID, year, month)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) PurgeStale(c echo.Context) error {
	removed, err := h.svc.PurgeStale(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"removed": removed})
}
