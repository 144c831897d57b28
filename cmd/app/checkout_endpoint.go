package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"
	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type checkoutCartLine struct {
	CatalogItemID     int64  `json:"catalog_item_id"`
	Name              string `json:"name"`
	UnitPrice         string `json:"unit_price"`
	Quantity          int    `json:"quantity"`
	AvailableQuantity int    `json:"available_quantity"`
}

type checkoutSessionRequest struct {
	RentalID        int64                    `json:"rental_id"`
	Customer        model.CustomerInfo       `json:"customer"`
	Insurance       model.InsuranceSelection `json:"insurance"`
	DeliveryAddress string                   `json:"delivery_address"`
	DeliveryDate    string                   `json:"delivery_date"`
	PostalCode      string                   `json:"postal_code"`
	Cart            []checkoutCartLine       `json:"cart"`
}

type quoteRequest struct {
	Insurance  model.InsuranceSelection `json:"insurance"`
	PostalCode string                   `json:"postal_code"`
	Cart       []checkoutCartLine       `json:"cart"`
}

type quoteResponse struct {
	Subtotal   string `json:"subtotal"`
	AddOnTotal string `json:"add_on_total"`
	TaxAmount  string `json:"tax_amount"`
	Total      string `json:"total"`
	TaxRate    string `json:"tax_rate"`
	StateRate  string `json:"state_rate"`
	LocalRate  string `json:"local_rate"`
}

func toQuoteResponse(q model.PriceQuote) quoteResponse {
	return quoteResponse{
		Subtotal:   services.RoundCents(q.Subtotal).StringFixed(2),
		AddOnTotal: services.RoundCents(q.AddOnTotal).StringFixed(2),
		TaxAmount:  services.RoundCents(q.TaxAmount).StringFixed(2),
		Total:      services.RoundCents(q.Total).StringFixed(2),
		TaxRate:    q.TaxRate.String(),
		StateRate:  q.Breakdown.State.String(),
		LocalRate:  q.Breakdown.Local.String(),
	}
}

func buildCartState(lines []checkoutCartLine) (model.CartState, error) {
	store := services.NewCartStore(nil)
	for _, l := range lines {
		price, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			return model.CartState{}, err
		}
		store.Dispatch(services.AddItem{Item: model.CartLine{
			CatalogItemID:     l.CatalogItemID,
			Name:              l.Name,
			UnitPrice:         price,
			Quantity:          l.Quantity,
			AvailableQuantity: l.AvailableQuantity,
		}})
	}
	return store.GetState(), nil
}

func registerCheckoutRoutes(
	g *echo.Group,
	ps *services.PaymentService,
	pricing *services.PricingService,
) {
	p := g.Group("/checkout")

	// QUOTE (no side effects)
	g.POST("/quote", func(c echo.Context) error {
		req := new(quoteRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		cart, err := buildCartState(req.Cart)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart amounts"})
		}
		q := pricing.Quote(cart.Total, req.Insurance, req.PostalCode)
		return c.JSON(http.StatusOK, toQuoteResponse(q))
	})

	// CREATE CHECKOUT SESSION
	p.POST("/session", func(c echo.Context) error {
		req := new(checkoutSessionRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		deliveryDate, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"errors": echo.Map{"delivery_date": "delivery date must be YYYY-MM-DD"},
			})
		}

		cart, err := buildCartState(req.Cart)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cart amounts"})
		}

		rentalID := req.RentalID
		if rentalID == 0 {
			rentalID, err = ps.InitiateRental(c.Request().Context(), req.Customer.Email, req.DeliveryAddress, deliveryDate)
			if err != nil {
				if errors.Is(err, services.ErrValidation) {
					return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
		}

		draft := &model.CheckoutDraft{
			RentalID:        rentalID,
			Customer:        req.Customer,
			Insurance:       req.Insurance,
			DeliveryAddress: req.DeliveryAddress,
			DeliveryDate:    deliveryDate,
			PostalCode:      req.PostalCode,
			Cart:            cart,
		}

		o := services.NewCheckoutOrchestrator(draft, pricing, ps)
		sess, quote, fieldErrs, err := o.RunToCompletion(c.Request().Context())
		if err != nil {
			switch {
			case len(fieldErrs) > 0:
				return c.JSON(http.StatusBadRequest, echo.Map{"errors": fieldErrs})
			case errors.Is(err, services.ErrRentalNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			case errors.Is(err, services.ErrInvalidAmount):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			case errors.Is(err, services.ErrOrphanedSession):
				// the session is chargeable at the provider; expose it so the
				// reconciliation sweep can find the object
				return c.JSON(http.StatusInternalServerError, echo.Map{
					"error":     "session created but not linked; do not retry",
					"rental_id": rentalID,
				})
			default:
				return c.JSON(http.StatusBadGateway, echo.Map{
					"error":     "payment provider unavailable, please retry",
					"retryable": true,
				})
			}
		}

		return c.JSON(http.StatusOK, echo.Map{
			"session_id": sess.ID,
			"url":        sess.URL,
			"rental_id":  rentalID,
			"quote":      toQuoteResponse(quote),
		})
	})

	// SESSION INFO
	p.GET("/session-info", func(c echo.Context) error {
		info, err := ps.GetSessionInfo(c.Request().Context(), c.QueryParam("session_id"))
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, info)
	})
}
