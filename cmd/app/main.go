package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/dashibook/chapter-monetization/pkg/access"
	chaptershandler "github.com/dashibook/chapter-monetization/pkg/handlers/chapters"
	rateshandler "github.com/dashibook/chapter-monetization/pkg/handlers/rates"
	revenuehandler "github.com/dashibook/chapter-monetization/pkg/handlers/revenue"
	subshandler "github.com/dashibook/chapter-monetization/pkg/handlers/subscriptions"
	walletshandler "github.com/dashibook/chapter-monetization/pkg/handlers/wallets"
	webhookshandler "github.com/dashibook/chapter-monetization/pkg/handlers/webhooks"
	wshandler "github.com/dashibook/chapter-monetization/pkg/handlers/websockets"
	"github.com/dashibook/chapter-monetization/pkg/ledger"
	"github.com/dashibook/chapter-monetization/pkg/middleware"
	"github.com/dashibook/chapter-monetization/pkg/payments"
	"github.com/dashibook/chapter-monetization/pkg/rates"
	"github.com/dashibook/chapter-monetization/pkg/revenue"
	"github.com/dashibook/chapter-monetization/pkg/scheduler"
	dydbstore "github.com/dashibook/chapter-monetization/pkg/storage/dynamodb"
	"github.com/dashibook/chapter-monetization/pkg/subscription"
	"github.com/dashibook/chapter-monetization/pkg/websockets"
)

func mustEnv(name string) string {
	value := os.Getenv(name)
	if value == "" {
		log.Fatalf("%s environment variable not set", name)
	}
	return value
}

func tablesFromEnv() dydbstore.Tables {
	return dydbstore.Tables{
		Wallets:       mustEnv("DYNAMODB_WALLETS_TABLE_NAME"),
		KanaLedger:    mustEnv("DYNAMODB_KANA_LEDGER_TABLE_NAME"),
		RevenueLedger: mustEnv("DYNAMODB_REVENUE_LEDGER_TABLE_NAME"),
		Unlocks:       mustEnv("DYNAMODB_UNLOCKS_TABLE_NAME"),
		Subscriptions: mustEnv("DYNAMODB_SUBSCRIPTIONS_TABLE_NAME"),
		Chapters:      mustEnv("DYNAMODB_CHAPTERS_TABLE_NAME"),
		Series:        mustEnv("DYNAMODB_SERIES_TABLE_NAME"),
		Tiers:         mustEnv("DYNAMODB_TIERS_TABLE_NAME"),
		Rates:         mustEnv("DYNAMODB_RATES_TABLE_NAME"),
		Events:        mustEnv("DYNAMODB_EVENTS_TABLE_NAME"),
		Connections:   mustEnv("DYNAMODB_CONNECTIONS_TABLE_NAME"),
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// AWS Session
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	store := dydbstore.New(dbClient, tablesFromEnv())

	// SQS client and release scheduler
	sqsClient := sqs.NewFromConfig(cfg)
	releaseScheduler := scheduler.NewSQSScheduler(sqsClient, mustEnv("SQS_RELEASE_QUEUE_URL"))

	// Payment provider
	provider := payments.NewRESTProvider(
		mustEnv("PAYMENTS_BASE_URL"),
		mustEnv("PAYMENTS_CLIENT_ID"),
		mustEnv("PAYMENTS_CLIENT_SECRET"),
	)

	// Dashboard publisher; optional locally.
	var publisher websockets.Publisher = &websockets.NoOpPublisher{}
	if endpoint := os.Getenv("WEBSOCKET_API_ENDPOINT"); endpoint != "" {
		publisher, err = websockets.NewPublisher(store, store, endpoint)
		if err != nil {
			log.Fatalf("failed to create websocket publisher: %v", err)
		}
	}

	// Domain services
	ledgerSvc := ledger.New(store)
	accessSvc := access.NewService(store)
	subscriptionSvc := subscription.New(store, provider)
	revenueSvc := revenue.New(ledgerSvc, store, provider)
	ratesSvc := rates.NewService(store)
	processor := subscription.NewProcessor(subscriptionSvc, store, revenueSvc)

	// Handlers
	walletsH := walletshandler.NewWalletsHandler(store, store, ledgerSvc, publisher)
	chaptersH := chaptershandler.NewChaptersHandler(store, accessSvc, ledgerSvc, revenueSvc, releaseScheduler, publisher)
	subsH := subshandler.NewSubscriptionsHandler(subscriptionSvc, store, store)
	revenueH := revenuehandler.NewRevenueHandler(revenueSvc, store, store, publisher)
	webhooksH := webhookshandler.NewWebhooksHandler(processor)
	ratesH := rateshandler.NewRatesHandler(ratesSvc)
	wsH := wshandler.NewHandler(store)

	// Create a new Chi router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.NewStructuredLogger(logger))

	router.Route("/wallets", func(r chi.Router) {
		r.Post("/", walletsH.CreateWallet)
	})
	router.Route("/wallet", func(r chi.Router) {
		r.Get("/", walletsH.GetWallet)
		r.Get("/transactions", walletsH.ListTransactions)
		r.Post("/transactions", walletsH.AddTransaction)
		r.Get("/unlocked", chaptersH.ListUnlocked)
	})

	router.Route("/series/{seriesId}", func(r chi.Router) {
		r.Get("/chapters", chaptersH.ListChapters)
		r.Get("/chapters/{chapterId}/access", chaptersH.CheckAccess)
		r.Post("/chapters/{chapterId}/unlock", chaptersH.UnlockChapter)
		r.Post("/chapters/{chapterId}/release", chaptersH.ScheduleRelease)
		r.Get("/tiers", subsH.ListTiers)
	})

	router.Route("/subscriptions", func(r chi.Router) {
		r.Get("/", subsH.ListSubscriptions)
		r.Post("/", subsH.CreateSubscription)
		r.Post("/{subscriptionId}/cancel", subsH.CancelSubscription)
		r.Post("/{subscriptionId}/reactivate", subsH.ReactivateSubscription)
		r.Post("/{subscriptionId}/upgrade", subsH.UpgradeTier)
		r.Post("/{subscriptionId}/downgrade", subsH.DowngradeTier)
	})

	router.Route("/revenue", func(r chi.Router) {
		r.Get("/transactions", revenueH.ListTransactions)
		r.Post("/withdraw", revenueH.Withdraw)
	})

	router.Post("/webhooks/payments", webhooksH.HandleEvent)

	router.Route("/admin/rates", func(r chi.Router) {
		r.Get("/commission/{type}", ratesH.GetCommissionRate)
		r.Put("/commission/{type}", ratesH.PutCommissionRate)
		r.Get("/exchange", ratesH.GetExchangeRate)
		r.Put("/exchange", ratesH.PutExchangeRate)
	})

	// Dashboard websocket for local development.
	router.Get("/ws", wsH.ServeHTTP)

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080" // Default port if not specified
	}

	log.Printf("Starting server on port %s", port)

	// Start the server
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
