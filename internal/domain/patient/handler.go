package patient

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
	api.POST("/patients", h.Create, auth.RequireRole(auth.RoleSupervisor))
	api.GET("/patients/me", h.GetOwnProfile, auth.RequireRole(auth.RolePatient))
	api.GET("/patients/me/doctors", h.ListOwnDoctors, auth.RequireRole(auth.RolePatient))
	api.PUT("/patients/me/medication-times", h.UpdateMedicationTimes, auth.RequireRole(auth.RolePatient))
	api.GET("/patients/:id", h.Get, auth.RequireRole(auth.RoleDoctor, auth.RoleSupervisor))
	api.GET("/search/patients/:query", h.Search, auth.RequireRole(auth.RoleDoctor, auth.RoleSupervisor))
}

func actor(c echo.Context) (auth.Actor, error) {
	a, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return auth.Actor{}, apperr.E(apperr.Unauthorized, "not authenticated")
	}
	return a, nil
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.E(apperr.Validation, "invalid request body")
	}
	p, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid patient id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetOwnProfile(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	profile, err := h.svc.GetProfile(c.Request().Context(), a.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Handler) ListOwnDoctors(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	doctors, err := h.svc.ListDoctors(c.Request().Context(), a.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) UpdateMedicationTimes(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in UpdateTimesInput
	if err := c.Bind(&in); err != nil {
		return apperr.E(apperr.Validation, "invalid request body")
	}
	p, err := h.svc.UpdateMedicationTimes(c.Request().Context(), a.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Search(c echo.Context) error {
	patients, err := h.svc.Search(c.Request().Context(), c.Param("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, patients)
}
