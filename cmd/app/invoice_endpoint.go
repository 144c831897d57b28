package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/middleware"
	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/services"

	"github.com/labstack/echo/v4"
)

type followUpInvoiceRequest struct {
	RentalID    int64  `json:"rental_id"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	DueDate     string `json:"due_date,omitempty"`
	SendEmail   *bool  `json:"send_email,omitempty"`
}

func registerAdminRentalRoutes(
	g *echo.Group,
	is *services.InvoiceService,
	rentals services.RentalStore,
) {
	p := g.Group("/admin")
	p.Use(middleware.AdminJWTMiddleware())

	// CREATE FOLLOW-UP INVOICE
	p.POST("/follow-up-invoice", func(c echo.Context) error {
		req := new(followUpInvoiceRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		opts := services.FollowUpOptions{SendEmail: true}
		if req.SendEmail != nil {
			opts.SendEmail = *req.SendEmail
		}
		if req.DueDate != "" {
			due, err := time.Parse("2006-01-02", req.DueDate)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "due date must be YYYY-MM-DD"})
			}
			opts.DueDate = &due
		}

		result, err := is.CreateFollowUpCharge(
			c.Request().Context(),
			req.RentalID,
			req.AmountCents,
			req.Description,
			opts,
		)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidAmount):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			case errors.Is(err, services.ErrRentalNotFound), errors.Is(err, services.ErrCustomerNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			case errors.Is(err, services.ErrDuplicateFollowUp), errors.Is(err, services.ErrNoPaymentMethodOnFile):
				return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
			case errors.Is(err, services.ErrOrphanedInvoice):
				// invoice exists at the provider; never retry this request
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"error":     err.Error(),
					"retryable": false,
				})
			default:
				// charge not created; safe to retry after re-checking status
				return c.JSON(http.StatusBadGateway, echo.Map{
					"error":     err.Error(),
					"retryable": true,
				})
			}
		}

		return c.JSON(http.StatusCreated, result)
	})

	// LIST RENTALS (newest first)
	p.GET("/rentals", func(c echo.Context) error {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		out, err := rentals.ListRecent(c.Request().Context(), limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"rentals": out})
	})
}
