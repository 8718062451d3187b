package cheapshark

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const searchBody = `[
  {"gameID":"612","steamAppID":"8870","cheapest":"3.99","cheapestDealID":"x","external":"BioShock Infinite","internalName":"BIOSHOCKINFINITE","thumb":"https://img/612.jpg"},
  {"gameID":"613","steamAppID":null,"cheapest":"9.99","cheapestDealID":"y","external":"BioShock Collection","internalName":"BIOSHOCKCOLLECTION","thumb":"https://img/613.jpg"}
]`

const detailBody = `{
  "info":{"title":"BioShock Infinite","steamAppID":"8870","thumb":"https://img/612.jpg"},
  "cheapestPriceEver":{"price":"2.99","date":1543912117},
  "deals":[
    {"storeID":"7","dealID":"deal%2Bgog","price":"3.99","retailPrice":"29.99","savings":"86.695565"},
    {"storeID":"1","dealID":"deal-steam","price":"7.49","retailPrice":"29.99","savings":"75.025008"}
  ]
}`

func TestSearchGamesDecodesResults(t *testing.T) {
	var gotHeader http.Header
	var gotTitle, gotLimit, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.URL.Query().Get("title")
		gotLimit = r.URL.Query().Get("limit")
		gotHeader = r.Header
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	rec := &countingRecorder{}
	client := New(Options{BaseURL: srv.URL + "/", UserAgent: "test-agent"}, rec, zerolog.Nop())

	games := client.SearchGames(context.Background(), "BioShock & Friends", 12)
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	if gotPath != "/games" || gotTitle != "BioShock & Friends" || gotLimit != "12" {
		t.Fatalf("unexpected request path=%q title=%q limit=%q", gotPath, gotTitle, gotLimit)
	}
	if gotHeader.Get("User-Agent") != "test-agent" {
		t.Fatalf("user agent not forwarded: %q", gotHeader.Get("User-Agent"))
	}
	if games[0].GameID != "612" || games[0].External != "BioShock Infinite" || games[0].Thumb != "https://img/612.jpg" {
		t.Fatalf("unexpected first game %+v", games[0])
	}
	if !games[1].Cheapest.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("cheapest not decoded: %s", games[1].Cheapest)
	}
	if rec.outcomes["search/ok"] != 1 {
		t.Fatalf("expected one ok observation, got %v", rec.outcomes)
	}
}

func TestGameDealsDecodesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "612" {
			t.Errorf("expected id=612, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(detailBody))
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL}, nil, zerolog.Nop())
	detail, ok := client.GameDeals(context.Background(), "612")
	if !ok {
		t.Fatal("expected detail")
	}
	if len(detail.Deals) != 2 || detail.Info.Title != "BioShock Infinite" {
		t.Fatalf("unexpected detail %+v", detail)
	}
	primary, _ := detail.Primary()
	if primary.StoreID != "7" || !primary.Price.Equal(decimal.RequireFromString("3.99")) {
		t.Fatalf("unexpected primary %+v", primary)
	}
	if !primary.Savings.Equal(decimal.RequireFromString("86.695565")) {
		t.Fatalf("savings not decoded: %s", primary.Savings)
	}
}

func TestFailuresDegradeToEmpty(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		},
		"rate limited": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"malformed body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"deals":[{"price":"not-a-number"}`))
		},
		"bad decimal": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"deals":[{"storeID":"1","price":"abc"}]}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			rec := &countingRecorder{}
			client := New(Options{BaseURL: srv.URL}, rec, zerolog.Nop())

			if games := client.SearchGames(context.Background(), "anything", 5); len(games) != 0 {
				t.Fatalf("expected no games, got %v", games)
			}
			if _, ok := client.GameDeals(context.Background(), "1"); ok {
				t.Fatal("expected absent detail")
			}
			if rec.outcomes["search/ok"] != 0 || rec.outcomes["deals/ok"] != 0 {
				t.Fatalf("failures must not be recorded as ok: %v", rec.outcomes)
			}
		})
	}
}

func TestTransportErrorDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	rec := &countingRecorder{}
	client := New(Options{BaseURL: baseURL, Timeout: time.Second}, rec, zerolog.Nop())

	if games := client.SearchGames(context.Background(), "Elden Ring", 12); games != nil {
		t.Fatalf("expected nil games, got %v", games)
	}
	if _, ok := client.GameDeals(context.Background(), "42"); ok {
		t.Fatal("expected absent detail")
	}
	if rec.outcomes["search/transport_error"] != 1 || rec.outcomes["deals/transport_error"] != 1 {
		t.Fatalf("expected transport errors to be observed, got %v", rec.outcomes)
	}
}

func TestBlankInputsSkipNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL}, nil, zerolog.Nop())
	client.SearchGames(context.Background(), "   ", 12)
	client.GameDeals(context.Background(), "")

	if calls != 0 {
		t.Fatalf("blank inputs should not reach upstream, got %d calls", calls)
	}
}

func TestRedirectURL(t *testing.T) {
	client := New(Options{}, nil, zerolog.Nop())
	got := client.RedirectURL("tyTH88J0PXRvYALBjV3cNHd5Juq1qKcu4tG4lBiUCt4=")
	want := "https://www.cheapshark.com/redirect?dealID=tyTH88J0PXRvYALBjV3cNHd5Juq1qKcu4tG4lBiUCt4%3D"
	if got != want {
		t.Fatalf("RedirectURL = %q, want %q", got, want)
	}
}

func TestParseHTTPError(t *testing.T) {
	err := parseHTTPError(http.StatusBadRequest, []byte(`{"error":"Invalid id"}`))
	if err.Error() != "cheapshark api error (400): Invalid id" {
		t.Fatalf("unexpected error %q", err)
	}
	err = parseHTTPError(http.StatusBadGateway, nil)
	if err.Error() != "cheapshark api error (502)" {
		t.Fatalf("unexpected error %q", err)
	}
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (r *countingRecorder) ObserveUpstream(endpoint, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[string]int)
	}
	r.outcomes[endpoint+"/"+outcome]++
}
