package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bookline-io/bookline/internal/auth"
	"github.com/bookline-io/bookline/internal/models"
	"github.com/bookline-io/bookline/internal/store"
	"github.com/bookline-io/bookline/internal/token"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type authResponse struct {
	User   *models.User      `json:"user"`
	Tokens *token.AuthTokens `json:"tokens"`
}

// writeError maps service errors to HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrUserNotFound), errors.Is(err, store.ErrTokenNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrAuthentication),
		errors.Is(err, auth.ErrPasswordResetFailed),
		errors.Is(err, auth.ErrEmailVerificationFailed),
		errors.Is(err, token.ErrInvalidToken),
		errors.Is(err, token.ErrExpiredToken):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (api *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !auth.ValidateEmail(creds.Email) {
		http.Error(w, "Invalid email format", http.StatusBadRequest)
		return
	}
	if !auth.ValidatePassword(creds.Password) {
		http.Error(w, "Password must be at least 8 characters and contain a letter and a number", http.StatusBadRequest)
		return
	}

	user, err := api.Auth.Register(creds.Email, creds.Password, creds.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	tokens, err := api.Tokens.GenerateAuthTokens(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := api.Auth.Login(creds.Email, creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	tokens, err := api.Tokens.GenerateAuthTokens(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

type refreshTokenBody struct {
	RefreshToken string `json:"refresh_token"`
}

func (api *Api) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var body refreshTokenBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := api.Auth.Logout(body.RefreshToken); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *Api) RefreshTokensHandler(w http.ResponseWriter, r *http.Request) {
	var body refreshTokenBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tokens, err := api.Auth.RefreshAuth(body.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (api *Api) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := api.Auth.ForgotPassword(body.Email); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *Api) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	resetToken := r.URL.Query().Get("token")
	if resetToken == "" {
		http.Error(w, "token query parameter required", http.StatusBadRequest)
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !auth.ValidatePassword(body.Password) {
		http.Error(w, "Password must be at least 8 characters and contain a letter and a number", http.StatusBadRequest)
		return
	}

	if err := api.Auth.ResetPassword(resetToken, body.Password); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *Api) SendVerificationEmailHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := api.Store.GetUserByID(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := api.Auth.SendVerificationEmail(user); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *Api) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	verifyToken := r.URL.Query().Get("token")
	if verifyToken == "" {
		http.Error(w, "token query parameter required", http.StatusBadRequest)
		return
	}

	if err := api.Auth.VerifyEmail(verifyToken); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
