package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/booking-assistant/internal/api/router"
	"github.com/wolfman30/booking-assistant/internal/booking"
	"github.com/wolfman30/booking-assistant/internal/chat"
	appconfig "github.com/wolfman30/booking-assistant/internal/config"
	"github.com/wolfman30/booking-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/booking-assistant/internal/http/middleware"
	"github.com/wolfman30/booking-assistant/internal/notify"
	"github.com/wolfman30/booking-assistant/internal/observability/metrics"
	"github.com/wolfman30/booking-assistant/internal/site"
	"github.com/wolfman30/booking-assistant/internal/suggestions"
	"github.com/wolfman30/booking-assistant/internal/webhook"
	"github.com/wolfman30/booking-assistant/pkg/logging"
)

// Deps are the long-lived clients the API wires into its services. Every field is optional.
type Deps struct {
	Redis    *redis.Client
	Postgres *pgxpool.Pool
	// AWS enables the Bedrock fallback for quick-reply suggestions when set.
	AWS *aws.Config
	// Sender overrides the automation webhook client, mainly for tests.
	Sender     booking.Sender
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// BuildNotifier returns the front desk notifier, or nil when no recipient is
// configured. Without a SendGrid key, development runs log emails instead of sending them.
func BuildNotifier(cfg *appconfig.Config, logger *logging.Logger) booking.Notifier {
	if strings.TrimSpace(cfg.FrontDeskEmail) == "" {
		logger.Info("FRONT_DESK_EMAIL not set; front desk notifications disabled")
		return nil
	}

	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else if cfg.Env == "development" {
		sender = notify.NewStubEmailSender(logger)
	} else {
		logger.Info("sendgrid not configured; front desk notifications disabled")
		return nil
	}
	return notify.NewFrontDeskNotifier(sender, cfg.FrontDeskEmail, logger)
}

// BuildLLMClient returns Gemini with a Bedrock fallback, either one alone, or nil.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) suggestions.LLMClient {
	var primary, fallback suggestions.LLMClient
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		gemini, err := suggestions.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini client unavailable", "error", err)
		} else {
			primary = gemini
		}
	}
	if awsCfg != nil && strings.TrimSpace(cfg.BedrockModelID) != "" {
		fallback = suggestions.NewBedrockLLMClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID)
	}
	client := suggestions.NewFallbackLLMClient(primary, fallback, logger)
	if client == nil {
		logger.Info("no LLM configured; quick replies are rule-based")
	}
	return client
}

// BuildAPI wires the booking, chat, suggestion and interpretation services
// into an HTTP handler.
func BuildAPI(ctx context.Context, cfg *appconfig.Config, deps Deps, logger *logging.Logger) (http.Handler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	variant, err := site.Lookup(cfg.SiteVariant)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	sender := deps.Sender
	if sender == nil {
		client, err := webhook.NewClient(webhook.Config{URL: cfg.WebhookURL, Timeout: cfg.WebhookTimeout})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: AUTOMATION_WEBHOOK_URL: %w", err)
		}
		sender = client
	}

	reg := deps.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	m := metrics.NewBookingMetrics(reg)

	opts := booking.Options{Metrics: m, Notifier: BuildNotifier(cfg, logger)}
	var transcripts *chat.TranscriptStore
	checks := map[string]handlers.HealthCheck{}
	if deps.Redis != nil {
		opts.Cache = booking.NewRedisAvailabilityCache(deps.Redis, variant.Key, cfg.AvailabilityCacheTTL)
		transcripts = chat.NewTranscriptStore(deps.Redis, cfg.ChatHistoryTTL)
		checks["redis"] = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}
	if deps.Postgres != nil {
		opts.AttemptLog = booking.NewPostgresAttemptLog(deps.Postgres)
		checks["postgres"] = deps.Postgres.Ping
	}

	bookingSvc := booking.NewService(variant, sender, logger, opts)
	chatSvc := chat.NewService(sender, transcripts, m, logger)
	generator := suggestions.NewGenerator(BuildLLMClient(ctx, cfg, deps.AWS, logger), variant, logger)

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.RunEviction(ctx, 5*time.Minute, 10*time.Minute)

	logger.Info("booking assistant wired",
		"variant", variant.Key,
		"cache", opts.Cache != nil,
		"attempt_log", deps.Postgres != nil,
		"notifier", opts.Notifier != nil,
	)

	return router.New(&router.Config{
		Logger:             logger,
		Health:             handlers.NewHealthHandler(checks),
		Booking:            handlers.NewBookingHandler(bookingSvc, logger),
		Chat:               handlers.NewChatHandler(chatSvc, logger),
		Suggestions:        handlers.NewSuggestionsHandler(generator),
		Interpret:          handlers.NewInterpretHandler(m),
		MetricsHandler:     promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	}), nil
}
