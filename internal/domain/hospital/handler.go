package hospital

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
	api.POST("/hospitals", h.Create, auth.RequireRole(auth.RoleSupervisor))
	api.GET("/hospitals/:id", h.Get)
	api.GET("/hospitals/:id/members", h.ListMembers)
	api.POST("/hospitals/:id/doctors", h.AssignDoctor, auth.RequireRole(auth.RoleSupervisor))
	api.POST("/hospitals/:id/patients", h.AssignPatient, auth.RequireRole(auth.RoleSupervisor))
	api.GET("/search/hospitals/:query", h.Search)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.E(apperr.Validation, "invalid request body")
	}
	hosp, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, hosp)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid hospital id")
	}
	hosp, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hosp)
}

func (h *Handler) ListMembers(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid hospital id")
	}
	members, err := h.svc.ListMembers(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, members)
}

type assignInput struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
}

func (h *Handler) AssignDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid hospital id")
	}
	var in assignInput
	if err := c.Bind(&in); err != nil || in.DoctorID == uuid.Nil {
		return apperr.E(apperr.Validation, "doctor_id is required")
	}
	if err := h.svc.AssignDoctor(c.Request().Context(), id, in.DoctorID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AssignPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.E(apperr.Validation, "invalid hospital id")
	}
	var in assignInput
	if err := c.Bind(&in); err != nil || in.PatientID == uuid.Nil {
		return apperr.E(apperr.Validation, "patient_id is required")
	}
	if err := h.svc.AssignPatient(c.Request().Context(), id, in.PatientID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Search(c echo.Context) error {
	hospitals, err := h.svc.Search(c.Request().Context(), c.Param("query"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hospitals)
}
