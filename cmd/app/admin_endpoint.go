package main

import (
	"net/http"
	"os"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/middleware"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerAdminLoginRoutes(e *echo.Echo) {
	e.POST("/admin/login", func(c echo.Context) error {
		req := new(adminLoginRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		adminEmail := os.Getenv("ADMIN_EMAIL")
		adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
		if adminEmail == "" || adminHash == "" {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "admin login not configured"})
		}

		if req.Email != adminEmail ||
			bcrypt.CompareHashAndPassword([]byte(adminHash), []byte(req.Password)) != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}

		token, err := middleware.GenerateAdminToken(req.Email, 12)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
		}
		return c.JSON(http.StatusOK, echo.Map{"token": token})
	})
}
