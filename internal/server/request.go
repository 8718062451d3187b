package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"lootradar/internal/currency"
	"lootradar/internal/links"
)

// MaxQueryLength bounds free-text queries accepted over HTTP.
const MaxQueryLength = 200

var validate = validator.New(validator.WithRequiredStructEnabled())

// errBadRequest marks input errors that map to HTTP 400.
var errBadRequest = errors.New("bad request")

type searchParams struct {
	Query    string `validate:"required,max=200"`
	Currency string `validate:"omitempty,oneof=EUR USD"`
	Limit    int    `validate:"omitempty,min=1,max=60"`
}

type linksParams struct {
	Query string `validate:"required,max=200"`
}

func parseSearchParams(r *http.Request) (searchParams, error) {
	q := r.URL.Query()
	params := searchParams{
		Query:    nonBlank(q.Get("q")),
		Currency: strings.ToUpper(strings.TrimSpace(q.Get("currency"))),
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("%w: limit must be an integer", errBadRequest)
		}
		if limit <= 0 {
			return params, fmt.Errorf("%w: limit must be between 1 and 60", errBadRequest)
		}
		params.Limit = limit
	}
	if err := validateParams(r, &params); err != nil {
		return params, err
	}
	return params, nil
}

func parseLinksParams(r *http.Request) (linksParams, error) {
	params := linksParams{Query: nonBlank(r.URL.Query().Get("q"))}
	if err := validateParams(r, &params); err != nil {
		return params, err
	}
	return params, nil
}

// nonBlank keeps the query as typed but empties whitespace-only input so the
// required rule rejects it.
func nonBlank(query string) string {
	if links.Blank(query) {
		return ""
	}
	return query
}

func validateParams(r *http.Request, params any) error {
	if err := validate.StructCtx(r.Context(), params); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", errBadRequest, describe(verrs[0]))
		}
		return fmt.Errorf("%w: %s", errBadRequest, err.Error())
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "Query":
		if fe.Tag() == "required" {
			return "q is required"
		}
		return fmt.Sprintf("q must be at most %d characters", MaxQueryLength)
	case "Currency":
		return "currency must be EUR or USD"
	case "Limit":
		return "limit must be between 1 and 60"
	default:
		return fe.Error()
	}
}

// resolveCurrency picks the explicit request currency, then the cookie, then
// the configured default. remembered reports whether the cookie already holds
// the returned choice.
func (s *Server) resolveCurrency(r *http.Request, explicit string) (cur currency.Currency, remembered bool) {
	var stored string
	if cookie, err := r.Cookie(currencyCookie); err == nil {
		stored = cookie.Value
	}
	if strings.TrimSpace(explicit) != "" {
		if cur, err := currency.Parse(explicit); err == nil {
			return cur, stored == string(cur.Code)
		}
	}
	if cur, err := currency.Parse(stored); err == nil {
		return cur, true
	}
	return s.opts.DefaultCurrency, true
}
