package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ewaste-pickup/middleware"
	"ewaste-pickup/utils"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 5 << 20
)

// DefaultRequestTimeout bounds the work done for a single request.
const DefaultRequestTimeout = 10 * time.Second

func requestContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return context.WithTimeout(r.Context(), timeout)
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched so field validation can report what is missing.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return utils.ValidationError("Request body too large")
	}
	return utils.ValidationError("Invalid request body")
}

// writeError is the only place a failure becomes an HTTP response. Internal
// and unavailable causes are logged, never sent.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := utils.KindOf(err)
	status := utils.StatusFor(kind)
	if status >= http.StatusInternalServerError {
		middleware.LoggerFromContext(r.Context()).Error("request error",
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
	}
	utils.RespondMessage(w, status, utils.MessageOf(err))
}

// currentUser returns the authenticated user id. Routes without the auth
// middleware never reach a handler that calls it.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.UserFromContext(r.Context())
	if !ok || claims.UserID == "" {
		utils.RespondMessage(w, http.StatusUnauthorized, "No token provided")
		return "", false
	}
	return claims.UserID, true
}
