package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yogaprasetya/otpguard/internal/account/usecase"
	"github.com/yogaprasetya/otpguard/internal/pkg/clock"
	"github.com/yogaprasetya/otpguard/internal/pkg/config"
	"github.com/yogaprasetya/otpguard/internal/pkg/goerror"
	"github.com/yogaprasetya/otpguard/internal/pkg/instrument"
	"github.com/yogaprasetya/otpguard/internal/pkg/jwt"
	"github.com/yogaprasetya/otpguard/internal/pkg/router"
	"github.com/yogaprasetya/otpguard/internal/pkg/uid"
)

type stubUsecase struct {
	registerErr error
	loginOut    *usecase.LoginOutput
	loginErr    error
	enrollOut   *usecase.TOTPEnrollOutput
	confirmOut  *usecase.TOTPConfirmOutput
	validateOut *usecase.TwoFactorValidateOutput
	recoverErr  error
	profileOut  *usecase.ProfileOutput
	profileErr  error
}

func (s *stubUsecase) Register(context.Context, usecase.RegisterInput) error {
	return s.registerErr
}

func (s *stubUsecase) Login(context.Context, usecase.LoginInput) (*usecase.LoginOutput, error) {
	return s.loginOut, s.loginErr
}

func (s *stubUsecase) TOTPEnroll(context.Context) (*usecase.TOTPEnrollOutput, error) {
	return s.enrollOut, nil
}

func (s *stubUsecase) TOTPConfirm(context.Context, usecase.TOTPConfirmInput) (*usecase.TOTPConfirmOutput, error) {
	return s.confirmOut, nil
}

func (s *stubUsecase) TwoFactorValidate(context.Context, usecase.TwoFactorValidateInput) (*usecase.TwoFactorValidateOutput, error) {
	return s.validateOut, nil
}

func (s *stubUsecase) TwoFactorRecover(context.Context, usecase.TwoFactorRecoverInput) error {
	return s.recoverErr
}

func (s *stubUsecase) Profile(context.Context) (*usecase.ProfileOutput, error) {
	return s.profileOut, s.profileErr
}

func testServer(t *testing.T, stub *stubUsecase) (*router.Router, jwt.JWT) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app: {}"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cfg.Close() })

	tokenSvc, err := jwt.NewSymmetric(jwt.Config{
		Secret:    bytes.Repeat([]byte{0x42}, 64),
		Issuer:    "otpguard",
		Audiences: []string{"otpguard-api"},
		TTL:       time.Hour,
		Clock:     &clock.Fixed{At: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	r := router.NewRouter(router.Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		JWT:        tokenSvc,
		Instrument: instrument.NewNoop(),
	})
	RegisterHTTPEndpoint(r, stub)

	return r, tokenSvc
}

func post(r *router.Router, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	r, _ := testServer(t, &stubUsecase{})

	rec := post(r, "/api/v1/auth/register", "", `{"full_name":"Jane Doe","email":"jane@example.com","password":"correct horse"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registration successful.")
}

func TestRegisterEndpointBadBody(t *testing.T) {
	r, _ := testServer(t, &stubUsecase{})

	rec := post(r, "/api/v1/auth/register", "", `{"email":"jane@example.com","oops":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}

func TestRegisterEndpointConflict(t *testing.T) {
	stub := &stubUsecase{
		registerErr: goerror.NewBusiness("email already registered", goerror.CodeConflict),
	}
	r, _ := testServer(t, stub)

	rec := post(r, "/api/v1/auth/register", "", `{"full_name":"Jane Doe","email":"jane@example.com","password":"correct horse"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already registered")
}

func TestLoginEndpoint(t *testing.T) {
	stub := &stubUsecase{loginOut: &usecase.LoginOutput{Token: "session-token"}}
	r, _ := testServer(t, stub)

	rec := post(r, "/api/v1/auth/login", "", `{"email":"jane@example.com","password":"correct horse"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "session-token", resp.Data.Token)
	assert.False(t, resp.Data.SecondFactorRequired)
}

func TestLoginEndpointSecondFactorRequired(t *testing.T) {
	stub := &stubUsecase{loginOut: &usecase.LoginOutput{SecondFactorRequired: true}}
	r, _ := testServer(t, stub)

	rec := post(r, "/api/v1/auth/login", "", `{"email":"jane@example.com","password":"correct horse"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.SecondFactorRequired)
	assert.Empty(t, resp.Data.Token)
}

func TestTOTPEnrollEndpointRequiresAuth(t *testing.T) {
	stub := &stubUsecase{enrollOut: &usecase.TOTPEnrollOutput{Secret: "SECRET", ProvisioningURI: "otpauth://totp/x"}}
	r, tokenSvc := testServer(t, stub)

	rec := post(r, "/api/v1/auth/2fa/enroll", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := tokenSvc.Generate("acc-1", "jane@example.com")
	require.NoError(t, err)

	rec = post(r, "/api/v1/auth/2fa/enroll", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "otpauth://totp/x")
}

func TestTOTPConfirmEndpoint(t *testing.T) {
	stub := &stubUsecase{confirmOut: &usecase.TOTPConfirmOutput{RecoveryCodes: []string{"aaaaa-bbbbb"}}}
	r, tokenSvc := testServer(t, stub)

	token, err := tokenSvc.Generate("acc-1", "jane@example.com")
	require.NoError(t, err)

	rec := post(r, "/api/v1/auth/2fa/confirm", token, `{"code":"123456"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aaaaa-bbbbb")
	assert.Contains(t, rec.Body.String(), "shown only once")
}

func TestTwoFactorValidateEndpointIsPublic(t *testing.T) {
	stub := &stubUsecase{validateOut: &usecase.TwoFactorValidateOutput{Token: "session-token"}}
	r, _ := testServer(t, stub)

	rec := post(r, "/api/v1/auth/2fa/validate", "", `{"email":"jane@example.com","code":"123456"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "session-token")
}

func TestTwoFactorRecoverEndpointIsPublic(t *testing.T) {
	r, _ := testServer(t, &stubUsecase{})

	rec := post(r, "/api/v1/auth/2fa/recover", "", `{"email":"jane@example.com","recovery_code":"aaaaa-bbbbb"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "has been disabled")
}

func TestProfileEndpoint(t *testing.T) {
	stub := &stubUsecase{profileOut: &usecase.ProfileOutput{
		ID:               "acc-1",
		Email:            "jane@example.com",
		FullName:         "Jane Doe",
		TwoFactorEnabled: true,
		TwoFactorState:   "Active",
	}}
	r, tokenSvc := testServer(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := tokenSvc.Generate("acc-1", "jane@example.com")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data ProfileResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "acc-1", resp.Data.ID)
	assert.Equal(t, "Active", resp.Data.TwoFactorState)
}
