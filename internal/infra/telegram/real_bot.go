package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"telegram-course-bot/internal/application"
	"telegram-course-bot/internal/config"
	"telegram-course-bot/internal/domain/ports/adapter"
	"telegram-course-bot/internal/infra/logging"
	"telegram-course-bot/internal/infra/metrics"
	red "telegram-course-bot/internal/infra/redis"
	"telegram-course-bot/internal/infra/resilience"
	"telegram-course-bot/internal/infra/worker"
)

// Compile-time check
var _ adapter.Transport = (*RealBotAdapter)(nil)

type cmdHandler func(ctx context.Context, msg *tgbotapi.Message) error

// RealBotAdapter wraps tgbotapi, dispatching inbound commands through a
// static route table and pushing outbound sends through rate limiting and a
// circuit breaker.
type RealBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	deduper     *red.Deduper
	limiter     *resilience.SendLimiter
	breaker     *gobreaker.CircuitBreaker[struct{}]
	pool        *worker.Pool
	routes      map[string]cmdHandler
	log         *zerolog.Logger

	cancelPolling context.CancelFunc
}

func NewRealBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	rateLimiter *red.RateLimiter,
	deduper *red.Deduper,
	pool *worker.Pool,
	logger *zerolog.Logger,
) (*RealBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	compLog := logger.With().Str("component", "TelegramBot").Logger()
	r := &RealBotAdapter{
		bot:         bot,
		cfg:         cfg,
		facade:      facade,
		rateLimiter: rateLimiter,
		deduper:     deduper,
		limiter:     resilience.NewSendLimiter(resilience.DefaultSendLimiterConfig()),
		pool:        pool,
		log:         &compLog,
	}
	breakerCfg := resilience.DefaultBreakerConfig("telegram-send")
	breakerCfg.OnStateChange = func(name, from, to string) {
		compLog.Warn().Str("breaker", name).Str("from", from).Str("to", to).Msg("breaker state change")
	}
	r.breaker = resilience.NewBreaker[struct{}](breakerCfg)
	r.routes = r.buildRoutes()
	return r, nil
}

// buildRoutes assembles the command table once at startup. Day commands are a
// bounded static set (/day1 .. /dayN), not dynamically generated matchers.
func (r *RealBotAdapter) buildRoutes() map[string]cmdHandler {
	routes := map[string]cmdHandler{
		"/start": func(ctx context.Context, msg *tgbotapi.Message) error {
			text, err := r.facade.HandleStart(ctx, int64(msg.From.ID), msg.From.UserName)
			if err != nil {
				return err
			}
			return r.SendMessage(ctx, msg.Chat.ID, text, adapter.SendOptions{})
		},
		"/pricing": func(ctx context.Context, msg *tgbotapi.Message) error {
			return r.SendMessage(ctx, msg.Chat.ID, r.facade.HandlePricing(), adapter.SendOptions{})
		},
		"/help": func(ctx context.Context, msg *tgbotapi.Message) error {
			return r.SendMessage(ctx, msg.Chat.ID, r.facade.HandleHelp(), adapter.SendOptions{})
		},
		"/progress": func(ctx context.Context, msg *tgbotapi.Message) error {
			text, err := r.facade.HandleProgress(ctx, int64(msg.From.ID))
			if err != nil {
				return err
			}
			return r.SendMessage(ctx, msg.Chat.ID, text, adapter.SendOptions{})
		},
	}
	for day := 1; day <= r.facade.MaxDay(); day++ {
		routes["/day"+strconv.Itoa(day)] = r.dayHandler(day)
	}
	return routes
}

func (r *RealBotAdapter) dayHandler(day int) cmdHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		ctx = logging.WithDay(ctx, day)
		return r.facade.HandleLesson(ctx, r, int64(msg.From.ID), msg.Chat.ID, day)
	}
}

// SendMessage implements the transport port. Every outbound message passes
// the global/per-chat pacing limits and the circuit breaker.
func (r *RealBotAdapter) SendMessage(ctx context.Context, chatID int64, text string, opts adapter.SendOptions) error {
	if err := r.limiter.Wait(ctx, chatID); err != nil {
		return err
	}

	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = opts.ParseMode
	m.DisableWebPagePreview = opts.DisableWebPagePreview
	m.DisableNotification = opts.DisableNotification

	_, err := r.breaker.Execute(func() (struct{}, error) {
		_, err := r.bot.Send(m)
		return struct{}{}, err
	})
	return err
}

// StartPolling drains the long-poll update channel into the worker pool.
// Blocks until ctx is cancelled or StopPolling is called.
func (r *RealBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			return ctx.Err()
		case up := <-updates:
			upd := up
			if err := r.pool.Submit(func(tctx context.Context) error {
				return r.HandleUpdate(tctx, upd)
			}); err != nil {
				r.log.Warn().Err(err).Msg("update dropped, worker queue full")
			}
		}
	}
}

func (r *RealBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// SetupWebhook clears any stale webhook and registers the configured one.
func (r *RealBotAdapter) SetupWebhook(ctx context.Context) error {
	if _, err := r.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return err
	}
	url := strings.TrimRight(r.cfg.WebhookURL, "/") + "/webhook/" + r.bot.Token
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return err
	}
	if _, err := r.bot.Request(wh); err != nil {
		return err
	}
	info, err := r.bot.GetWebhookInfo()
	if err != nil {
		return err
	}
	if info.LastErrorDate != 0 {
		r.log.Warn().Str("last_error", info.LastErrorMessage).Msg("webhook reports a previous delivery error")
	}
	r.log.Info().Msg("webhook configured")
	return nil
}

// Token exposes the bot token so the webhook route can verify the path.
func (r *RealBotAdapter) Token() string { return r.bot.Token }

// HandleUpdate processes one inbound update to completion:
// dedupe -> rate limit -> dispatch -> (on failure) single apology.
// Handler failures are converted here, never propagated to the caller.
func (r *RealBotAdapter) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	tgID := int64(msg.From.ID)
	chatID := msg.Chat.ID

	ctx = logging.WithTraceID(ctx, ulid.Make().String())
	ctx = logging.WithTgID(ctx, tgID)
	ctx = logging.WithChatID(ctx, chatID)
	log := logging.With(ctx, r.log)

	if r.deduper != nil {
		first, err := r.deduper.FirstSeen(ctx, chatID, msg.MessageID)
		if err != nil {
			log.Warn().Err(err).Msg("dedupe check failed, letting update through")
		} else if !first {
			metrics.IncDuplicateUpdate()
			log.Debug().Int("message_id", msg.MessageID).Msg("duplicate update dropped")
			return nil
		}
	}

	command := "message"
	if fields := strings.Fields(msg.Text); len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		command = fields[0]
	}

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(tgID, command), 20, time.Minute)
		if err != nil {
			log.Warn().Err(err).Msg("rate limit check failed")
		} else if !allowed {
			return r.SendMessage(ctx, chatID, r.facade.RateLimited(), adapter.SendOptions{})
		}
	}

	metrics.IncCommand(command)

	handler, ok := r.routes[command]
	if !ok {
		if command == "message" && msg.Text != "" && strings.Contains(msg.Text, r.facade.JoinIntentKeyword()) {
			return r.SendMessage(ctx, chatID, r.facade.HandleJoinIntent(), adapter.SendOptions{})
		}
		return nil
	}

	if err := handler(ctx, msg); err != nil {
		log.Error().Err(err).Str("command", command).Msg("command handler failed")
		if serr := r.SendMessage(ctx, chatID, r.facade.Apology(), adapter.SendOptions{}); serr != nil {
			log.Error().Err(serr).Msg("apology send failed")
		}
	}
	return nil
}
