package refdata

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dosetrack/dosetrack/internal/platform/apperr"
)

// Handler serves prefix search over the reference lists.
type Handler struct {
	reg *Registry
}

func NewHandler(reg *Registry) *Handler {
	return &Handler{reg: reg}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/search/drugs/:query", h.SearchDrugs)
	api.GET("/search/specialities/:query", h.SearchSpecialities)
}

func (h *Handler) SearchDrugs(c echo.Context) error {
	return search(c, h.reg.Drugs)
}

func (h *Handler) SearchSpecialities(c echo.Context) error {
	return search(c, h.reg.Specialities)
}

func search(c echo.Context, list *List) error {
	query := c.Param("query")
	if query == "" {
		return apperr.E(apperr.Validation, "search query is required")
	}
	return c.JSON(http.StatusOK, list.Search(query, DefaultSearchLimit))
}
