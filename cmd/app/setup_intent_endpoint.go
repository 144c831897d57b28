package main

import (
	"errors"
	"net/http"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/services"

	"github.com/labstack/echo/v4"
)

type setupIntentRequest struct {
	ExternalCustomerID string `json:"external_customer_id"`
	RentalID           int64  `json:"rental_id,omitempty"`
}

func registerSetupIntentRoutes(g *echo.Group, ss *services.SetupService) {
	g.POST("/setup-intent", func(c echo.Context) error {
		req := new(setupIntentRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		result, err := ss.CreateSetupIntent(c.Request().Context(), req.ExternalCustomerID, req.RentalID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrValidation):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			case errors.Is(err, services.ErrCustomerNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			default:
				return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
			}
		}

		return c.JSON(http.StatusOK, result)
	})
}
