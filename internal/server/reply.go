package server

import (
	"context"
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"traceId"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	writeJSON(ctx, w, status, errorResponse{Error: msg, TraceID: TraceIDFromContext(ctx)})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			replyError(r.Context(), w, err)
		}
	}
}

func replyError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, errBadRequest) {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("rejected request")
		writeError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	zerolog.Ctx(ctx).Error().Err(err).Msg("request failed")
	writeError(ctx, w, http.StatusInternalServerError, "internal error")
}
