package catalog

import (
	"net/http"

	"delivery-marketplace/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler serves the catalog proxy and vendor availability.
type Handler struct {
	client       ClientInterface
	availability *AvailabilityService
}

// NewHandler creates a new catalog handler.
func NewHandler(client ClientInterface, availability *AvailabilityService) *Handler {
	return &Handler{client: client, availability: availability}
}

func (h *Handler) ListFoods(c echo.Context) error {
	products, err := h.client.ListFoods(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list foods: %v", err)
		return utils.RespondWithError(c, http.StatusBadGateway, "Failed to load the catalog")
	}
	return utils.RespondWithJSON(c, http.StatusOK, products)
}

func (h *Handler) GetAvailability(c echo.Context) error {
	vendorID := c.Param("vendorId")
	if vendorID == "" {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid vendor ID")
	}
	a, err := h.availability.Availability(c.Request().Context(), vendorID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, a)
}
