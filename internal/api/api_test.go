package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bookline-io/bookline/internal/config"
	"github.com/bookline-io/bookline/internal/database"
	"github.com/bookline-io/bookline/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// fakeNotifier records messages instead of delivering them
type fakeNotifier struct {
	sent []notify.Message
}

func (f *fakeNotifier) Send(msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

// ApiTestSuite drives the full router over httptest
type ApiTestSuite struct {
	suite.Suite
	api      *Api
	server   *httptest.Server
	notifier *fakeNotifier
}

func (s *ApiTestSuite) SetupTest() {
	cfg := config.Config{}
	cfg.Database.Type = "sqlite"
	cfg.Database.Path = filepath.Join(s.T().TempDir(), "test_bookline.db")
	cfg.Database.MaxRetries = 1
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessExpirationMinutes = 30
	cfg.JWT.RefreshExpirationDays = 30
	cfg.JWT.ResetPasswordExpirationMinutes = 10
	cfg.JWT.VerifyEmailExpirationMinutes = 10

	db, err := database.Open(&cfg)
	require.NoError(s.T(), err)

	s.notifier = &fakeNotifier{}
	s.api = newApi(cfg, db, s.notifier, nil)
	s.server = httptest.NewServer(s.api.Router)

	s.T().Cleanup(func() {
		s.server.Close()
		s.api.Close()
	})
}

func TestApiTestSuite(t *testing.T) {
	suite.Run(t, new(ApiTestSuite))
}

func (s *ApiTestSuite) request(method, path, accessToken string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.T(), err)
	return resp
}

func (s *ApiTestSuite) decode(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(v))
}

type tokenPayload struct {
	Token string `json:"token"`
}

type authPayload struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Tokens struct {
		Access  tokenPayload `json:"access"`
		Refresh tokenPayload `json:"refresh"`
	} `json:"tokens"`
}

func (s *ApiTestSuite) register(email, password string) authPayload {
	resp := s.request(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	var out authPayload
	s.decode(resp, &out)
	return out
}

func (s *ApiTestSuite) TestHeartbeat() {
	resp, err := http.Get(s.server.URL + "/heartbeat")
	require.NoError(s.T(), err)
	defer resp.Body.Close()
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
}

func (s *ApiTestSuite) TestRegisterAndLogin() {
	registered := s.register("user@example.com", "password1")
	assert.NotEmpty(s.T(), registered.User.ID)
	assert.Equal(s.T(), "user@example.com", registered.User.Email)
	assert.NotEmpty(s.T(), registered.Tokens.Access.Token)
	assert.NotEmpty(s.T(), registered.Tokens.Refresh.Token)

	resp := s.request(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "password1",
	})
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var loggedIn authPayload
	s.decode(resp, &loggedIn)
	assert.Equal(s.T(), registered.User.ID, loggedIn.User.ID)

	resp = s.request(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "wrong-password",
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
}

func (s *ApiTestSuite) TestRegisterValidation() {
	resp := s.request(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "password1",
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)

	resp = s.request(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email":    "user@example.com",
		"password": "short",
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
}

func (s *ApiTestSuite) TestRegisterDuplicateEmail() {
	s.register("dup@example.com", "password1")

	resp := s.request(http.MethodPost, "/v1/auth/register", "", map[string]string{
		"email":    "dup@example.com",
		"password": "password1",
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
}

func (s *ApiTestSuite) TestLogout() {
	registered := s.register("user@example.com", "password1")

	resp := s.request(http.MethodPost, "/v1/auth/logout", "", map[string]string{
		"refresh_token": registered.Tokens.Refresh.Token,
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)

	// The same refresh token cannot be logged out twice
	resp = s.request(http.MethodPost, "/v1/auth/logout", "", map[string]string{
		"refresh_token": registered.Tokens.Refresh.Token,
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
}

func (s *ApiTestSuite) TestRefreshTokensSingleUse() {
	registered := s.register("user@example.com", "password1")

	resp := s.request(http.MethodPost, "/v1/auth/refresh-tokens", "", map[string]string{
		"refresh_token": registered.Tokens.Refresh.Token,
	})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var fresh struct {
		Access  tokenPayload `json:"access"`
		Refresh tokenPayload `json:"refresh"`
	}
	s.decode(resp, &fresh)
	assert.NotEmpty(s.T(), fresh.Access.Token)
	assert.NotEqual(s.T(), registered.Tokens.Refresh.Token, fresh.Refresh.Token)

	// Replaying the consumed token is rejected
	resp = s.request(http.MethodPost, "/v1/auth/refresh-tokens", "", map[string]string{
		"refresh_token": registered.Tokens.Refresh.Token,
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
}

func (s *ApiTestSuite) TestProtectedRoutesRequireToken() {
	resp := s.request(http.MethodGet, "/v1/schedule", "", nil)
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)

	resp = s.request(http.MethodGet, "/v1/schedule", "not-a-token", nil)
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)

	// A refresh token is not accepted in place of an access token
	registered := s.register("user@example.com", "password1")
	resp = s.request(http.MethodGet, "/v1/schedule", registered.Tokens.Refresh.Token, nil)
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
}

func (s *ApiTestSuite) TestScheduleFlow() {
	doctor := s.register("doctor@example.com", "password1")
	patient := s.register("patient@example.com", "password1")

	// Patient registers a device token
	resp := s.request(http.MethodPost, "/v1/device-token", patient.Tokens.Access.Token, map[string]string{
		"device_token": "tok123",
	})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var deviceOut struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	s.decode(resp, &deviceOut)
	assert.Equal(s.T(), patient.User.ID, deviceOut.User.ID)

	// Doctor creates an appointment for the patient
	resp = s.request(http.MethodPost, "/v1/schedule", doctor.Tokens.Access.Token, map[string]string{
		"added_for": patient.User.ID,
		"detail":    "annual checkup",
	})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var created struct {
		ID      string `json:"id"`
		AddedBy string `json:"added_by"`
	}
	s.decode(resp, &created)
	assert.NotEmpty(s.T(), created.ID)
	assert.Equal(s.T(), doctor.User.ID, created.AddedBy)

	// The patient's device was notified
	require.Len(s.T(), s.notifier.sent, 1)
	assert.Equal(s.T(), "tok123", s.notifier.sent[0].To)
	assert.Equal(s.T(), "Schedule Updated", s.notifier.sent[0].Title)

	// The appointment shows up for the patient, not the doctor
	resp = s.request(http.MethodGet, fmt.Sprintf("/v1/schedule?user_id=%s", patient.User.ID), doctor.Tokens.Access.Token, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var listed struct {
		Schedule []struct {
			ID     string `json:"id"`
			Detail string `json:"detail"`
		} `json:"schedule"`
	}
	s.decode(resp, &listed)
	require.Len(s.T(), listed.Schedule, 1)
	assert.Equal(s.T(), created.ID, listed.Schedule[0].ID)
	assert.Equal(s.T(), "annual checkup", listed.Schedule[0].Detail)

	// Without user_id the caller sees their own schedule
	resp = s.request(http.MethodGet, "/v1/schedule", doctor.Tokens.Access.Token, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var own struct {
		Schedule []struct {
			ID string `json:"id"`
		} `json:"schedule"`
	}
	s.decode(resp, &own)
	assert.Empty(s.T(), own.Schedule)
}

func (s *ApiTestSuite) TestScheduleValidation() {
	doctor := s.register("doctor@example.com", "password1")

	resp := s.request(http.MethodPost, "/v1/schedule", doctor.Tokens.Access.Token, map[string]string{
		"detail": "missing target",
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)

	resp = s.request(http.MethodPost, "/v1/schedule", doctor.Tokens.Access.Token, map[string]string{
		"added_for": "missing-id",
		"detail":    "unknown target",
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
}

func (s *ApiTestSuite) TestVerifyEmailFlow() {
	registered := s.register("user@example.com", "password1")

	// Mailer is not wired in tests, so issue the token directly
	user, err := s.api.Store.GetUserByID(registered.User.ID)
	require.NoError(s.T(), err)
	verifyToken, err := s.api.Tokens.GenerateVerifyEmailToken(user)
	require.NoError(s.T(), err)

	resp := s.request(http.MethodPost, "/v1/auth/verify-email?token="+verifyToken, "", nil)
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)

	verified, err := s.api.Store.GetUserByID(registered.User.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), verified.IsEmailVerified)

	// The consumed token is rejected on replay
	resp = s.request(http.MethodPost, "/v1/auth/verify-email?token="+verifyToken, "", nil)
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
}

func (s *ApiTestSuite) TestResetPasswordFlow() {
	registered := s.register("user@example.com", "password1")

	resetToken, err := s.api.Tokens.GenerateResetPasswordToken(registered.User.Email)
	require.NoError(s.T(), err)

	resp := s.request(http.MethodPost, "/v1/auth/reset-password?token="+resetToken, "", map[string]string{
		"password": "newpassword1",
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)

	resp = s.request(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "password1",
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)

	resp = s.request(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "newpassword1",
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
}

func (s *ApiTestSuite) TestForgotPasswordUnknownEmail() {
	resp := s.request(http.MethodPost, "/v1/auth/forgot-password", "", map[string]string{
		"email": "unknown@example.com",
	})
	resp.Body.Close()
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
}
