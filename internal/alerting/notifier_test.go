package alerting

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func sampleNote() Notification {
	return Notification{
		At:             time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Query:          "witcher",
		Title:          "The Witcher 3: Wild Hunt",
		StoreName:      "GOG",
		SalePrice:      "€5.69",
		RetailPrice:    "€37.99",
		SavingsPercent: 85,
		ThresholdPct:   decimal.NewFromInt(50),
		RedirectURL:    "https://www.cheapshark.com/redirect?dealID=abc",
	}
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL+"/", time.Second, zerolog.Nop())
	if err := notifier.Notify(context.Background(), sampleNote()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if path != "/bottoken/sendMessage" {
		t.Fatalf("unexpected path %q", path)
	}
	if received["chat_id"] != "chat" {
		t.Fatalf("chat_id mismatch: %#v", received)
	}
	if !strings.Contains(received["text"], "The Witcher 3: Wild Hunt") {
		t.Fatalf("text should mention the game: %q", received["text"])
	}
}

func TestTelegramNotifierError(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"ok false": func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
		},
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, zerolog.Nop())
			if err := notifier.Notify(context.Background(), sampleNote()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLogNotifierWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	notifier := NewLogNotifier(zerolog.New(&buf))

	if err := notifier.Notify(context.Background(), sampleNote()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line["title"] != "The Witcher 3: Wild Hunt" || line["component"] != "alert_log" {
		t.Fatalf("unexpected log line %v", line)
	}
	if line["savings_pct"] != float64(85) {
		t.Fatalf("savings_pct = %v", line["savings_pct"])
	}
}

func TestRenderMessage(t *testing.T) {
	note := sampleNote()
	note.IsBundle = true
	msg := RenderMessage(note)

	for _, want := range []string{
		"Game: The Witcher 3: Wild Hunt",
		"Type: bundle / pack",
		"Store: GOG",
		"Price: €5.69 (was €37.99)",
		"Savings: -85% (threshold 50%)",
		"Checked: 2024-05-01T12:00:00Z UTC",
		"https://www.cheapshark.com/redirect?dealID=abc",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}
