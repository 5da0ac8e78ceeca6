package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"calorie-buddy/internal/config"
	"calorie-buddy/internal/metrics"
	"calorie-buddy/internal/planner"
	"calorie-buddy/internal/profile"
	"calorie-buddy/internal/shared"
	"calorie-buddy/internal/summary"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// commandTimeout bounds the work done for a single chat command.
const commandTimeout = 2 * time.Minute

type SummaryService interface {
	Daily(ctx context.Context, userID, date string) (summary.Daily, error)
}

type PlanService interface {
	Generate(ctx context.Context, userID, date string) (planner.Result, error)
}

type UsageReporter interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// Bot answers chat commands from allow-listed Telegram users.
type Bot struct {
	api       *tgbotapi.BotAPI
	summaries SummaryService
	plans     PlanService
	usage     UsageReporter
	allowed   []int64
	dataDir   string
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, summaries SummaryService, plans PlanService, usage UsageReporter) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:       bot,
		summaries: summaries,
		plans:     plans,
		usage:     usage,
		allowed:   cfg.TelegramAllowedUserIDs,
		dataDir:   filepath.Dir(cfg.DatabasePath),
	}, nil
}

// RegisterHandlers mounts the webhook and a plain health probe on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) isAllowed(userID int64) bool {
	return slices.Contains(b.allowed, userID)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := parseCommand(msg.Text)

	// Plans take a while; show progress and edit the message in place.
	if cmd.Name == "plan" && len(cmd.Args) > 0 {
		status := tgbotapi.NewMessage(msg.Chat.ID, "🧑‍🍳 *Thinking...* \n(Generating your meal plan)")
		status.ParseMode = tgbotapi.ModeMarkdown
		sent, err := b.api.Send(status)
		if err != nil {
			log.Printf("Failed to send initial reply: %v", err)
			return
		}
		edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sent.MessageID, b.respond(ctx, cmd))
		edit.ParseMode = tgbotapi.ModeMarkdown
		if _, err := b.api.Send(edit); err != nil {
			log.Printf("Failed to send meal plan: %v", err)
		}
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, b.respond(ctx, cmd))
	reply.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(reply); err != nil {
		log.Printf("Failed to send reply: %v", err)
	}
}

// respond renders the Markdown answer to cmd.
func (b *Bot) respond(ctx context.Context, cmd command) string {
	switch cmd.Name {
	case "summary":
		if len(cmd.Args) == 0 {
			return "Usage: `/summary <profile_id> [YYYY-MM-DD]`"
		}
		d, err := b.summaries.Daily(ctx, cmd.Args[0], cmd.arg(1))
		if err != nil {
			return formatError("fetching summary", cmd.Args[0], err)
		}
		return formatSummaryMarkdown(d)

	case "plan":
		if len(cmd.Args) == 0 {
			return "Usage: `/plan <profile_id> [YYYY-MM-DD]`"
		}
		res, err := b.plans.Generate(ctx, cmd.Args[0], cmd.arg(1))
		if err != nil {
			log.Printf("Error generating plan: %v", err)
			return formatError("generating plan", cmd.Args[0], err)
		}
		return formatPlanMarkdown(res)

	case "metrics":
		usage, err := b.usage.GetDailyUsage(ctx, 7)
		if err != nil {
			log.Printf("Error fetching metrics: %v", err)
			return "❌ Error fetching metrics."
		}
		return formatMetricsMarkdown(usage, metrics.GetSysHealth(b.dataDir))

	default:
		return helpText
	}
}

const helpText = "🥗 *Calorie Buddy*\n\n" +
	"`/summary <profile_id> [YYYY-MM-DD]` daily totals\n" +
	"`/plan <profile_id> [YYYY-MM-DD]` generate a meal plan\n" +
	"`/metrics` AI usage report"

type command struct {
	Name string
	Args []string
}

func (c command) arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// parseCommand splits "/name@bot a b" into its name and arguments. Text
// that is not a command yields an empty name.
func parseCommand(text string) command {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return command{}
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return command{Name: strings.ToLower(name), Args: fields[1:]}
}

func formatError(action, profileID string, err error) string {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return fmt.Sprintf("❌ Profile `%s` not found.", strings.ReplaceAll(profileID, "`", "'"))
	case errors.Is(err, shared.ErrInvalidDate):
		return "❌ Dates must look like `YYYY-MM-DD`."
	}
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *Error %s:*\n```\n%v\n```", action, safeErr)
}
