package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	NatsURL string

	// CalendarProvider is "google", "outlook" or "disabled".
	CalendarProvider        string
	GoogleServiceAccountKey string
	GoogleCalendarID        string
	OutlookClientID         string
	OutlookClientSecret     string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string

	// FallbackTeacherEmail receives teacher notifications when a teacher row
	// has no email.
	FallbackTeacherEmail string
}

func Load() *Config {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables")
	}

	return &Config{
		AppPort: getEnv("APP_PORT", "8001"),

		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     os.Getenv("DB_NAME"),

		NatsURL: getEnv("NATS_URL", "nats://localhost:4222"),

		CalendarProvider:        getEnv("CALENDAR_PROVIDER", "disabled"),
		GoogleServiceAccountKey: os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY"),
		GoogleCalendarID:        getEnv("GOOGLE_CALENDAR_ID", "primary"),
		OutlookClientID:         os.Getenv("OUTLOOK_CLIENT_ID"),
		OutlookClientSecret:     os.Getenv("OUTLOOK_CLIENT_SECRET"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: getEnv("MAIL_FROM", "no-reply@myschool.com"),

		FallbackTeacherEmail: getEnv("FALLBACK_TEACHER_EMAIL", "admin@example.com"),
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
