package main

import (
	"log"
	"os"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/external/resend"
	"github.com/alexandermaat99/intermountain-dumpsters-sub001/external/stripe"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/db"
	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/repository"
	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// ======================
	// INFRA
	// ======================
	pool, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	// ======================
	// EXTERNALS
	// ======================
	gateway, err := stripe.NewGateway()
	if err != nil {
		log.Fatal(err)
	}

	var opsMailer services.OpsMailer
	var receiptMailer services.ReceiptMailer
	if os.Getenv("RESEND_API_KEY") != "" {
		mailer, err := resend.NewResendMailer("Intermountain Dumpsters <billing@intermountaindumpsters.com>")
		if err != nil {
			log.Fatal(err)
		}
		opsMailer = mailer
		receiptMailer = mailer
	} else {
		logger.Warn("RESEND_API_KEY not set; ops alerts and receipts disabled")
	}

	// ======================
	// REPOSITORIES
	// ======================
	rentalRepo := repository.NewRentalRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)

	cartDir := os.Getenv("CART_DATA_DIR")
	if cartDir == "" {
		cartDir = "data/carts"
	}
	if err := os.MkdirAll(cartDir, 0o755); err != nil {
		log.Fatal(err)
	}
	cartRegistry := services.NewCartRegistry(cartDir)

	// ======================
	// SERVICES
	// ======================
	pricingSvc := services.NewPricingService()
	pricingSvc.TaxAddOns = os.Getenv("TAX_ADDONS") == "true"

	paymentSvc := services.NewPaymentService(rentalRepo, customerRepo, gateway, opsMailer, logger)
	webhookSvc := services.NewWebhookService(gateway, rentalRepo, customerRepo, receiptMailer, logger)
	invoiceSvc := services.NewInvoiceService(rentalRepo, customerRepo, gateway, opsMailer, logger)
	setupSvc := services.NewSetupService(customerRepo, gateway, logger)

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	api := e.Group("/rentals")

	// ======================
	// ROUTES (ONLY REGISTRATION)
	// ======================
	registerCartRoutes(api, cartRegistry)
	registerCheckoutRoutes(api, paymentSvc, pricingSvc)
	registerWebhookRoutes(api, webhookSvc)
	registerSetupIntentRoutes(api, setupSvc)
	registerAdminRentalRoutes(api, invoiceSvc, rentalRepo)
	registerAdminLoginRoutes(e)

	// ======================
	// SERVER
	// ======================
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
