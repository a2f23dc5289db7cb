// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/truefeedback/internal/config"
	"codeberg.org/oliverandrich/truefeedback/internal/i18n"
	"codeberg.org/oliverandrich/truefeedback/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "localhost", Port: 8080, MaxBodySize: 1},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"},
		Session:  config.SessionConfig{CookieName: "_session", MaxAge: 3600, HashKey: testHashKey},
		Token:    config.TokenConfig{Secret: "s3cret", TTL: time.Hour},
		GenAI:    config.GenAIConfig{Model: "gemini-2.0-flash"},
	}
}

func newTestServer(t *testing.T) (*echo.Echo, Store) {
	t.Helper()
	require.NoError(t, i18n.Init())

	cfg := newTestConfig()
	store, err := openStore(context.Background(), &cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	services, err := buildServices(context.Background(), cfg, store)
	require.NoError(t, err)

	e := echo.New()
	setupMiddleware(e, cfg)
	setupRoutes(e, services, store)
	return e, store
}

func do(e *echo.Echo, method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := testutil.NewRequest(method, path, strings.NewReader(body))
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := openStore(context.Background(), &config.DatabaseConfig{Driver: "postgres"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown database driver")
}

func TestRoutes_Health(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRoutes_OwnerRoutesRequireSession(t *testing.T) {
	e, _ := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/session"},
		{http.MethodGet, "/api/accept-messages"},
		{http.MethodPost, "/api/accept-messages"},
		{http.MethodGet, "/api/get-messages"},
		{http.MethodDelete, "/api/delete-message/abc"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := do(e, r.method, r.path, `{"acceptMessages":false}`)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"success":false,"message":"Not authenticated."}`, rec.Body.String())
		})
	}
}

func TestRoutes_EndToEnd(t *testing.T) {
	e, store := newTestServer(t)
	ctx := context.Background()

	rec := do(e, http.MethodPost, "/api/sign-up", `{"username":"alice","email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	account, err := store.GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)

	rec = do(e, http.MethodPost, "/api/verify-code", `{"username":"alice","verifyCode":"`+account.VerifyCode+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/sign-in", `{"identifier":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	withCookie := func(r *http.Request) { r.AddCookie(cookies[0]) }

	rec = do(e, http.MethodPost, "/api/send-message", `{"username":"alice","content":"Great talk!"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/accept-messages", `{"acceptMessages":false}`, withCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The cookie still carries the old flag; the store wins.
	rec = do(e, http.MethodGet, "/api/session", "", withCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var session struct {
		User struct {
			IsAcceptingMessages bool `json:"isAcceptingMessages"`
		} `json:"user"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.False(t, session.User.IsAcceptingMessages)
	assert.Equal(t, "cookie", session.Source)

	rec = do(e, http.MethodPost, "/api/send-message", `{"username":"alice","content":"Another"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPost, "/api/token", `{"identifier":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var issued struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issued))
	withBearer := func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+issued.Token) }

	rec = do(e, http.MethodGet, "/api/session", "", withBearer, withCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "bearer", session.Source)

	rec = do(e, http.MethodGet, "/api/get-messages", "", withBearer)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Messages []struct {
			ID      string `json:"_id"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Messages, 1)
	assert.Equal(t, "Great talk!", listed.Messages[0].Content)

	rec = do(e, http.MethodDelete, "/api/delete-message/"+listed.Messages[0].ID, "", withBearer)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodDelete, "/api/delete-message/"+listed.Messages[0].ID, "", withBearer)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_GermanMessages(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/send-message", `{"username":"nobody","content":"Hallo"}`,
		func(r *http.Request) { r.Header.Set("Accept-Language", "de-DE") })

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, i18n.T(i18n.WithLocale(context.Background(), i18n.Languages[1]), "recipient_not_found"), body.Message)
}
