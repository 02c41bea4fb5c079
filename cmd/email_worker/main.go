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

	"github.com/oksasatya/go-ddd-event-hub/config"
	"github.com/oksasatya/go-ddd-event-hub/pkg/helpers"
	"github.com/oksasatya/go-ddd-event-hub/pkg/mailer"
)

const sendTimeout = 15 * time.Second

// verdict is what happens to a delivery after processing.
type verdict int

const (
	ack verdict = iota
	drop
	retry
)

// process delivers one queue message. Payloads that can never succeed are
// dropped; transport failures are requeued.
func process(ctx context.Context, sender mailer.Sender, body []byte, logger *logrus.Logger) verdict {
	job, err := mailer.DecodeJob(body)
	if err == nil {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err = mailer.Deliver(sendCtx, sender, job)
		cancel()
	}
	switch {
	case err == nil:
		helpers.LogInfo(logger, "email sent", logrus.Fields{"to": job.To, "subject": job.Subject})
		return ack
	case errors.Is(err, mailer.ErrBadJob):
		helpers.LogError(logger, "dropping bad email job", err, nil)
		return drop
	default:
		helpers.LogError(logger, "send failed, requeueing", err, logrus.Fields{"to": job.To})
		return retry
	}
}

func settle(d amqp.Delivery, v verdict) error {
	switch v {
	case ack:
		return d.Ack(false)
	case drop:
		return d.Nack(false, false)
	default:
		return d.Nack(false, true)
	}
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, cfg.RabbitMQPrefetch)
	if err != nil {
		logger.WithError(err).Fatal("rabbitmq connect failed")
	}

	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.WithError(err).Fatal("consume failed")
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			if err := settle(msg, process(ctx, mg, msg.Body, logger)); err != nil {
				helpers.LogError(logger, "settle delivery failed", err, logrus.Fields{"delivery_tag": msg.DeliveryTag})
			}
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	select {
	case <-ctx.Done():
	case <-done:
		logger.Warn("delivery channel closed")
	}
	logger.Info("shutting down")
	consumer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
