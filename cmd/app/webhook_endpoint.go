package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/services"

	"github.com/labstack/echo/v4"
)

func registerWebhookRoutes(g *echo.Group, ws *services.WebhookService) {
	// ============================
	// PROVIDER WEBHOOK
	// (NO JWT, must be public)
	// ============================
	g.POST("/webhook", func(c echo.Context) error {
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
		}

		sig := c.Request().Header.Get("Stripe-Signature")

		if err := ws.HandleEvent(c.Request().Context(), raw, sig); err != nil {
			if errors.Is(err, services.ErrInvalidSignature) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
			}
			// local write failed; a non-2xx makes the provider redeliver,
			// which is safe because every transition is idempotent
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, echo.Map{"received": true})
	})
}
