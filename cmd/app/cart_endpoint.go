package main

import (
	"net/http"
	"strconv"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"
	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type addCartLineRequest struct {
	CatalogItemID     int64  `json:"catalog_item_id"`
	Name              string `json:"name"`
	UnitPrice         string `json:"unit_price"`
	Quantity          int    `json:"quantity"`
	AvailableQuantity int    `json:"available_quantity"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func registerCartRoutes(g *echo.Group, registry *services.CartRegistry) {
	p := g.Group("/cart/:cartid")

	store := func(c echo.Context) (*services.CartStore, error) {
		return registry.Get(c.Param("cartid"))
	}

	// GET cart
	p.GET("", func(c echo.Context) error {
		s, err := store(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, s.GetState())
	})

	// ADD line
	p.POST("", func(c echo.Context) error {
		s, err := store(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		req := new(addCartLineRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		price, err := decimal.NewFromString(req.UnitPrice)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid unit price"})
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		s.Dispatch(services.AddItem{Item: model.CartLine{
			CatalogItemID:     req.CatalogItemID,
			Name:              req.Name,
			UnitPrice:         price,
			Quantity:          req.Quantity,
			AvailableQuantity: req.AvailableQuantity,
		}})
		return c.JSON(http.StatusCreated, s.GetState())
	})

	// SET quantity (0 removes the line)
	p.PUT("/:itemid", func(c echo.Context) error {
		s, err := store(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		itemID, _ := strconv.ParseInt(c.Param("itemid"), 10, 64)
		req := new(setQuantityRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		s.Dispatch(services.SetQuantity{CatalogItemID: itemID, Quantity: req.Quantity})
		return c.JSON(http.StatusOK, s.GetState())
	})

	// REMOVE line
	p.DELETE("/:itemid", func(c echo.Context) error {
		s, err := store(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		itemID, _ := strconv.ParseInt(c.Param("itemid"), 10, 64)
		s.Dispatch(services.RemoveItem{CatalogItemID: itemID})
		return c.JSON(http.StatusOK, s.GetState())
	})

	// CLEAR cart
	p.DELETE("", func(c echo.Context) error {
		s, err := store(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		s.Dispatch(services.ClearCart{})
		return c.JSON(http.StatusOK, s.GetState())
	})
}
