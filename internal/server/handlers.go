package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"lootradar/internal/currency"
	"lootradar/internal/links"
	"lootradar/internal/version"
)

const currencyCookie = "currency"

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboard = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	cur, remembered := s.resolveCurrency(r, r.URL.Query().Get("currency"))
	if !remembered {
		http.SetCookie(w, &http.Cookie{
			Name:     currencyCookie,
			Value:    string(cur.Code),
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	page := newPageView(query, cur)
	page.Version = version.Version
	status := http.StatusOK

	switch {
	case links.Blank(query):
	case len([]rune(query)) > MaxQueryLength:
		page.Error = "Search text is too long."
		status = http.StatusBadRequest
	default:
		page.fill(s.search.Search(r.Context(), query, s.opts.DefaultLimit, cur))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := dashboard.Execute(w, page); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render dashboard")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) error {
	params, err := parseSearchParams(r)
	if err != nil {
		return err
	}

	cur := s.opts.DefaultCurrency
	if params.Currency != "" {
		parsed, err := currency.Parse(params.Currency)
		if err != nil {
			return fmt.Errorf("%w: %s", errBadRequest, err)
		}
		cur = parsed
	}
	limit := params.Limit
	if limit == 0 {
		limit = s.opts.DefaultLimit
	}

	result := s.search.Search(r.Context(), params.Query, limit, cur)
	writeJSON(r.Context(), w, http.StatusOK, newSearchJSON(result))
	return nil
}

func (s *Server) handleAPILinks(w http.ResponseWriter, r *http.Request) error {
	params, err := parseLinksParams(r)
	if err != nil {
		return err
	}
	writeJSON(r.Context(), w, http.StatusOK, s.search.Links(params.Query))
	return nil
}

func (s *Server) handleAPIStores(w http.ResponseWriter, r *http.Request) error {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"placeholder": s.directory.Placeholder(),
		"stores":      s.directory.Stores(),
	})
	return nil
}
