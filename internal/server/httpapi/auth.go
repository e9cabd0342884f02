package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/result"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
)

type ctxKey int

const callerKey ctxKey = iota

type tokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// CallerFromContext returns the user resolved by requireCaller.
func CallerFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(callerKey).(*models.User)
	return u, ok && u != nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (h *handler) requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, http.StatusUnauthorized, "Authorization header must be Bearer {token}")
			return
		}

		user := h.auth.ValidateToken(r.Context(), token)
		if user == nil {
			writeError(w, http.StatusUnauthorized, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, user)))
	})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, int(result.CodeBadRequest), "Invalid request body")
		return
	}

	res := h.auth.Register(r.Context(), req)
	if !res.Success {
		writeError(w, http.StatusBadRequest, int(res.ErrorCode), res.ErrorDescription)
		return
	}

	h.respondWithToken(w, r, res.Data, "Registration successful!")
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, int(result.CodeBadRequest), "Invalid request body")
		return
	}

	res := h.auth.Login(r.Context(), req)
	if !res.Success {
		writeError(w, http.StatusUnauthorized, int(res.ErrorCode), res.ErrorDescription)
		return
	}

	h.respondWithToken(w, r, res.Data, "Login successful!")
}

func (h *handler) respondWithToken(w http.ResponseWriter, r *http.Request, userID, message string) {
	token, err := h.tokens.Sign(userID)
	if err != nil {
		h.log.Error(r.Context(), "sign token", "error", err)
		writeError(w, http.StatusInternalServerError, 0, "Failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Message: message, Token: token})
}
