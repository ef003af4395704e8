package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"booking-service/internal/api"
	"booking-service/internal/config"
	"booking-service/internal/notifier"
)

func main() {
	cfg := config.Load()

	api.SetupGlobalHandler("booking-notifier")

	mailer := notifier.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	worker, err := notifier.Start(cfg.NatsURL, mailer, cfg.FallbackTeacherEmail)
	if err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}
	defer worker.Close()

	log.Println("Notification worker started, waiting for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down notification worker...")
}
