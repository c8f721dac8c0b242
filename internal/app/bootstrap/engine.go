package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/therapy-booking/internal/appointments"
	"github.com/wolfman30/therapy-booking/internal/booking"
	"github.com/wolfman30/therapy-booking/internal/calendar"
	"github.com/wolfman30/therapy-booking/internal/catalog"
	"github.com/wolfman30/therapy-booking/internal/clock"
	appconfig "github.com/wolfman30/therapy-booking/internal/config"
	"github.com/wolfman30/therapy-booking/internal/draft"
	"github.com/wolfman30/therapy-booking/internal/matching"
	"github.com/wolfman30/therapy-booking/internal/notify"
	"github.com/wolfman30/therapy-booking/internal/observability/metrics"
	"github.com/wolfman30/therapy-booking/internal/persistence"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

// Engine is the assembled booking core shared by the HTTP layer.
type Engine struct {
	Catalog      *catalog.Catalog
	Matcher      *matching.Matcher
	Appointments *appointments.Store
	Drafts       *draft.Service
	Booking      *booking.Service
	Clock        clock.Clock
}

// EngineDeps are the externally built pieces BuildEngine needs.
// Registerer, LoadAWS and Clock are optional.
type EngineDeps struct {
	Config     *appconfig.Config
	Port       persistence.Port
	Registerer prometheus.Registerer
	LoadAWS    AWSConfigLoader
	Clock      clock.Clock
	Logger     *logging.Logger
}

// BuildEngine loads persisted state and wires the booking services.
func BuildEngine(ctx context.Context, deps EngineDeps) (*Engine, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if deps.Port == nil {
		return nil, fmt.Errorf("bootstrap: persistence port is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clk := clock.OrSystem(deps.Clock)

	var bookingMetrics *metrics.BookingMetrics
	if deps.Registerer != nil {
		bookingMetrics = metrics.NewBookingMetrics(deps.Registerer)
	}

	cat := catalog.Default()
	matcher := matching.NewMatcher(cat)

	store, err := appointments.NewStore(ctx, deps.Port, appointments.Options{
		Clock:    clk,
		Location: cfg.Location(),
		Logger:   logger.With("component", "appointments"),
		Metrics:  bookingMetrics,
		SeedDemo: cfg.SeedDemoData,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load appointments: %w", err)
	}

	drafts, err := draft.NewService(ctx, deps.Port, cat, logger.With("component", "draft"))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load draft: %w", err)
	}

	publisher, err := buildCalendarPublisher(ctx, cfg, deps.LoadAWS, logger)
	if err != nil {
		return nil, err
	}
	sender, err := BuildEmailSender(ctx, cfg, deps.LoadAWS, logger)
	if err != nil {
		return nil, err
	}

	svc := booking.NewService(booking.Deps{
		Drafts:            drafts,
		Appointments:      store,
		Matcher:           matcher,
		Clock:             clk,
		Publisher:         publisher,
		Notifier:          notify.NewService(sender, logger.With("component", "notify")),
		Metrics:           bookingMetrics,
		Logger:            logger.With("component", "booking"),
		MeetingBaseURL:    cfg.MeetingBaseURL,
		CalendarProductID: cfg.CalendarProductID,
	})

	return &Engine{
		Catalog:      cat,
		Matcher:      matcher,
		Appointments: store,
		Drafts:       drafts,
		Booking:      svc,
		Clock:        clk,
	}, nil
}

func buildCalendarPublisher(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (*calendar.Publisher, error) {
	if cfg.CalendarBucket == "" {
		return nil, nil
	}
	if loadAWS == nil {
		logger.Warn("calendar bucket configured without aws config; publishing disabled", "bucket", cfg.CalendarBucket)
		return nil, nil
	}
	awsCfg, err := loadAWS(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config for calendar publisher: %w", err)
	}
	logger.Info("calendar publishing enabled", "bucket", cfg.CalendarBucket)
	return calendar.NewPublisher(NewS3Client(awsCfg, cfg), cfg.CalendarBucket, logger.With("component", "calendar")), nil
}

// BuildEmailSender picks the confirmation email provider named by EMAIL_PROVIDER.
// Misconfigured providers fall back to the stub sender so bookings still succeed.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (notify.EmailSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			logger.Info("email provider: sendgrid")
			return s, nil
		}
		logger.Warn("SENDGRID_API_KEY missing; using stub email sender")
	case "ses":
		if loadAWS == nil {
			logger.Warn("ses selected without aws config; using stub email sender")
			break
		}
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config for ses: %w", err)
		}
		logger.Info("email provider: ses", "from", cfg.SESFromEmail)
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger), nil
	case "smtp":
		if s := notify.NewSMTPSender(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.SMTPFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			logger.Info("email provider: smtp", "host", cfg.SMTPHost)
			return s, nil
		}
		logger.Warn("SMTP_HOST missing; using stub email sender")
	case "", "stub":
	default:
		logger.Warn("unknown email provider; using stub", "provider", cfg.EmailProvider)
	}
	return notify.NewStubEmailSender(logger), nil
}
