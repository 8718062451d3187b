package alerting

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Notification describes one deal that crossed the watch threshold.
type Notification struct {
	At             time.Time
	Query          string
	Title          string
	StoreName      string
	SalePrice      string
	RetailPrice    string
	SavingsPercent int64
	ThresholdPct   decimal.Decimal
	IsBundle       bool
	RedirectURL    string
}

// Notifier delivers watch notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify calls sendMessage with the rendered text.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    RenderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && !result.OK {
		return fmt.Errorf("telegram returned ok=false")
	}

	n.logger.Info().
		Str("title", note.Title).
		Int64("savings_pct", note.SavingsPercent).
		Msg("notification sent (telegram)")
	return nil
}

// LogNotifier writes notifications to the log. It is used when no chat
// transport is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier constructs a log-backed notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "alert_log").Logger()}
}

// Notify logs the deal at warn level.
func (n *LogNotifier) Notify(_ context.Context, note Notification) error {
	n.logger.Warn().
		Str("query", note.Query).
		Str("title", note.Title).
		Str("store", note.StoreName).
		Str("sale_price", note.SalePrice).
		Str("retail_price", note.RetailPrice).
		Int64("savings_pct", note.SavingsPercent).
		Str("threshold_pct", note.ThresholdPct.String()).
		Bool("bundle", note.IsBundle).
		Str("url", note.RedirectURL).
		Msg("deal above threshold")
	return nil
}

// RenderMessage formats a notification as plain text.
func RenderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[LootRadar Deal]\n")
	builder.WriteString(fmt.Sprintf("Game: %s\n", note.Title))
	if note.IsBundle {
		builder.WriteString("Type: bundle / pack\n")
	}
	builder.WriteString(fmt.Sprintf("Store: %s\n", note.StoreName))
	builder.WriteString(fmt.Sprintf("Price: %s (was %s)\n", note.SalePrice, note.RetailPrice))
	builder.WriteString(fmt.Sprintf("Savings: -%d%% (threshold %s%%)\n", note.SavingsPercent, note.ThresholdPct.String()))
	if note.Query != "" {
		builder.WriteString(fmt.Sprintf("Watch: %s\n", note.Query))
	}
	if !note.At.IsZero() {
		builder.WriteString(fmt.Sprintf("Checked: %s UTC\n", note.At.UTC().Format(time.RFC3339)))
	}
	if note.RedirectURL != "" {
		builder.WriteString(note.RedirectURL)
	}
	return builder.String()
}

var (
	_ Notifier = (*TelegramNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
)
