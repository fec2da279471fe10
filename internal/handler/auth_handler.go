// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/cinelog/internal/auth"
	"github.com/hitoshi/cinelog/internal/middleware"
	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/token"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	LoginURL() (string, error)
	HandleCallback(ctx context.Context, code string) (*model.User, string, error)
	CurrentUser(ctx context.Context, tokenString string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	FrontendURL string // ログイン成功後のリダイレクト先
}

// AuthHandler はOAuth認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// Login はGoogle OAuthフローを開始する。
// GET /auth/google
// 設定不備の場合はリダイレクトせず500でフェイルクローズする。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	loginURL, err := h.service.LoginURL()
	if err != nil {
		slog.Error("oauth login url unavailable", slog.String("error", err.Error()))
		middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewOAuthNotConfiguredError())
		return
	}

	http.Redirect(w, r, loginURL, http.StatusFound)
}

// Callback はOAuthコールバックを処理する。
// GET /auth/google/callback?code=xxx
// 成功時はフロントエンドにトークン付きでリダイレクトする。
// 失敗時はリダイレクトせずHTTPエラーを返す（URLに秘密情報を載せない）。
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	user, sessionToken, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCode):
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewMissingAuthCodeError())
		case errors.Is(err, auth.ErrExchangeFailed):
			slog.Warn("oauth token exchange failed", slog.String("error", err.Error()))
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewExchangeFailedError())
		case errors.Is(err, auth.ErrProfileFetchFailed):
			slog.Warn("oauth profile fetch failed", slog.String("error", err.Error()))
			middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewProfileFetchFailedError())
		default:
			slog.Error("oauth callback failed", slog.String("error", err.Error()))
			middleware.WriteInternalServerError(w)
		}
		return
	}

	slog.Info("login redirect issued", slog.String("user_id", user.ID))

	redirectURL := strings.TrimSuffix(h.config.FrontendURL, "/") + "?token=" + url.QueryEscape(sessionToken)
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me?token=xxx
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewTokenInvalidError())
		return
	}

	user, err := h.service.CurrentUser(r.Context(), tokenString)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrInvalid):
			middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewTokenInvalidError())
		case errors.Is(err, auth.ErrUserNotFound):
			middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		default:
			slog.Error("failed to get current user", slog.String("error", err.Error()))
			middleware.WriteInternalServerError(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.Public())
}
