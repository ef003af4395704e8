package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"booking-service/internal/api"
	"booking-service/internal/calendar"
	"booking-service/internal/config"
	"booking-service/internal/events"
	"booking-service/internal/repository"
	"booking-service/internal/service"
	"booking-service/internal/tracing"
	_ "booking-service/migrations"
)

func main() {
	cfg := config.Load()

	api.SetupGlobalHandler("booking-service")

	shutdownTracer, err := tracing.InitTracerProvider("booking-service")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations(cfg)
		return
	}

	db := connectDB(cfg)
	defer db.Close()

	eventPublisher, err := events.NewNatsPublisher(cfg.NatsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	log.Println("Successfully connected to NATS.")

	subjectRepo := repository.NewPostgresSubjectRepository(db)
	teacherRepo := repository.NewPostgresTeacherRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)
	calendarEventRepo := repository.NewPostgresCalendarEventRepository(db)
	tokenRepo := repository.NewPostgresOAuthTokenRepository(db)

	calendarManager := calendar.NewManager(newCalendarProvider(cfg, tokenRepo), calendarEventRepo)
	bookingService := service.NewBookingService(subjectRepo, teacherRepo, bookingRepo, eventPublisher, calendarManager)

	bookingHandler := api.NewBookingHandler(bookingService)
	catalogHandler := api.NewCatalogHandler(subjectRepo, teacherRepo)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "booking-service"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	v1.Get("/subjects", catalogHandler.ListSubjects)
	v1.Get("/teachers", catalogHandler.ListTeachers)

	v1.Post("/bookings", bookingHandler.SubmitBooking)
	v1.Post("/bookings/:id/cancel", bookingHandler.CancelBooking)

	log.Printf("Listening booking-service on port %s", cfg.AppPort)
	log.Fatal(app.Listen(":" + cfg.AppPort))
}

func newCalendarProvider(cfg *config.Config, tokenRepo repository.OAuthTokenRepository) calendar.Provider {
	switch cfg.CalendarProvider {
	case "google":
		if cfg.GoogleServiceAccountKey == "" {
			log.Println("WARNING: GOOGLE_SERVICE_ACCOUNT_KEY is not set, calendar integration disabled")
			return nil
		}

		provider, err := calendar.NewGoogleProvider(context.Background(), []byte(cfg.GoogleServiceAccountKey), cfg.GoogleCalendarID)
		if err != nil {
			log.Printf("WARNING: Failed to initialize Google Calendar, integration disabled: %v", err)
			return nil
		}
		return provider
	case "outlook":
		if cfg.OutlookClientID == "" || cfg.OutlookClientSecret == "" {
			log.Println("WARNING: Outlook credentials are not set, calendar integration disabled")
			return nil
		}
		return calendar.NewOutlookProvider(tokenRepo, cfg.OutlookClientID, cfg.OutlookClientSecret)
	default:
		log.Println("Calendar integration disabled")
		return nil
	}
}

func connectDB(cfg *config.Config) *sqlx.DB {
	db, err := sqlx.Connect("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations(cfg *config.Config) {
	fmt.Println("Running database migrations...")

	db, err := sql.Open("pgx", cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}
