package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/noorfaiz5/Book-worm-hub/config"
	"github.com/noorfaiz5/Book-worm-hub/pkg/helpers"
	"github.com/noorfaiz5/Book-worm-hub/pkg/mailer"
)

const (
	sendTimeout = 15 * time.Second
	consumerTag = "email-worker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotifyQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, ch, err := helpers.DialQueue(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue)
	if err != nil {
		logger.WithError(err).Fatal("amqp connect")
	}
	defer func() {
		_ = ch.Close()
		_ = conn.Close()
	}()

	// Prefetch keeps dispatch fair across workers.
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos")
	}
	msgs, err := ch.Consume(cfg.RabbitMQNotifyQueue, consumerTag, false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			handle(ctx, logger, mg, msg)
		}
	}()

	logger.WithField("queue", cfg.RabbitMQNotifyQueue).Info("email worker listening")
	select {
	case <-ctx.Done():
	case <-done:
		logger.Error("delivery channel closed")
		return
	}
	logger.Info("shutting down...")
	_ = ch.Cancel(consumerTag, false)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// handle acks delivered mail, drops malformed jobs and requeues delivery failures.
func handle(ctx context.Context, logger logrus.FieldLogger, s mailer.Sender, msg amqp.Delivery) {
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	err := mailer.Handle(c, s, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, mailer.ErrBadJob):
		logger.WithError(err).Warn("dropping bad email job")
		_ = msg.Nack(false, false)
	default:
		logger.WithError(err).Warn("send failed, requeueing")
		_ = msg.Nack(false, true)
	}
}
