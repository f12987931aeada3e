package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	fineshandler "finetrack/internal/fines/handler"
	finesmetrics "finetrack/internal/fines/metrics"
	"finetrack/internal/fines/service"
	jwttoken "finetrack/internal/jwt_token"
	"finetrack/internal/payment"
	paymenthandler "finetrack/internal/payment/handler"
	"finetrack/internal/platform/config"
	"finetrack/internal/platform/httpserver"
	"finetrack/internal/platform/kafka"
	"finetrack/internal/platform/kafka/consumer"
	"finetrack/internal/platform/kafka/producer"
	"finetrack/internal/platform/logger"
	"finetrack/internal/platform/metrics"
	"finetrack/internal/platform/redis"
	"finetrack/internal/ratelimit"
	httptransport "finetrack/internal/transport/http"
	auditconsumer "finetrack/pkg/platform/audit/consumer"
	"finetrack/pkg/platform/audit/publisher"
	"finetrack/pkg/platform/audit/publishers/compliance"
	"finetrack/pkg/platform/audit/worker"
)

// main wires high-level dependencies and owns the process lifecycle. Business
// logic lives in the internal feature packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("finetrack exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	loc := cfg.Location()

	be, err := newBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.Close()

	compliancePub := compliance.New(be.audit,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics()),
	)
	defer compliancePub.Close()
	opsPub := publisher.NewPublisher(be.audit,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	)
	defer opsPub.Close()

	checkout, err := payment.NewHostedCheckout(cfg.Payment.CheckoutURL, cfg.Payment.ReturnURL, cfg.Payment.CancelURL)
	if err != nil {
		return err
	}

	fines, err := service.New(be.roster, be.offences, be.fines, compliancePub,
		service.WithLogger(log),
		service.WithMetrics(finesmetrics.New()),
		service.WithPaymentLedger(be.ledger),
		service.WithPaymentGateway(checkout),
		service.WithTxRunner(be.tx),
		service.WithOpsPublisher(opsPub),
		service.WithLocation(loc),
	)
	if err != nil {
		return err
	}

	var dedupe payment.Deduper = payment.NewMemoryDeduper(cfg.Redis.DedupeTTL)
	var limits ratelimit.Store = ratelimit.NewInMemoryStore()
	redisClient, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		dedupe = payment.NewRedisDeduper(redisClient.Client, cfg.Redis.DedupeTTL)
		limits = ratelimit.NewRedisStore(redisClient.Client)
		be.checks["redis"] = redisClient.Health
	}
	processor := payment.NewProcessor(fines, dedupe, log)

	jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:   log,
		Metrics:  metrics.New(),
		Location: loc,
		Checks:   be.checks,
	},
		fineshandler.New(fines, jwttoken.NewJWTServiceAdapter(jwtService), log,
			fineshandler.WithMatchLimit(limits, cfg.RateLimit.MatchLimit, cfg.RateLimit.MatchWindow)),
		paymenthandler.New(processor, cfg.Payment.WebhookSecretHash, opsPub, log),
	)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Kafka.Enabled() {
		if err := startKafka(gctx, g, cfg, be, processor, log); err != nil {
			return err
		}
	} else {
		log.Info("kafka not configured, payment confirmations arrive by webhook only")
	}
	g.Go(func() error {
		return httpserver.Run(gctx, httpserver.New(cfg.Addr, router), cfg.ShutdownGrace, log)
	})

	log.Info("finetrack started",
		"addr", cfg.Addr,
		"backend", cfg.Backend,
		"timezone", loc.String(),
	)
	return g.Wait()
}

// startKafka runs the confirmation consumer and, with the outbox backend, the
// audit relay and its materializing consumer.
func startKafka(ctx context.Context, g *errgroup.Group, cfg config.Server, be *backend, processor *payment.Processor, log *slog.Logger) error {
	kc := cfg.Kafka
	setupCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := kafka.EnsureTopics(setupCtx, kc.Brokers, 3, 1, kc.PaymentsTopic, kc.AuditTopic); err != nil {
		return err
	}

	router := auditconsumer.NewRouter(log)
	router.Register(kc.PaymentsTopic, payment.NewConfirmationHandler(processor, log))

	if be.outbox != nil {
		prod, err := producer.New(kc.Brokers, kc.ClientID)
		if err != nil {
			return err
		}
		relay := worker.NewRelay(be.outbox, prod, kc.AuditTopic, log)
		g.Go(func() error {
			defer prod.Close()
			return ignoreCanceled(relay.Run(ctx))
		})
		router.Register(kc.AuditTopic, auditconsumer.NewAuditHandler(be.auditSink, log))
	}

	cons, err := consumer.New(kc.Brokers, kc.ConsumerGroup, router.Topics(), router, log)
	if err != nil {
		return err
	}
	g.Go(func() error {
		defer cons.Close()
		return ignoreCanceled(cons.Run(ctx))
	})
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
