// Package auth はGoogle OAuthログインフローとセッショントークンの管理を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/cinelog/internal/metrics"
	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
	"github.com/hitoshi/cinelog/internal/token"
)

// 認証フローの失敗種別。ハンドラーはこれらをHTTPステータスに対応付ける。
var (
	// ErrNotConfigured はOAuthクライアントIDが未設定であることを表す。
	// ネットワークエラーではなく設定エラーであり、フェイルクローズする。
	ErrNotConfigured = errors.New("oauth client is not configured")

	// ErrMissingCode は認可コードが空であることを表す。
	ErrMissingCode = errors.New("authorization code is required")

	// ErrExchangeFailed はプロバイダーが使用可能なアクセストークンを
	// 返さなかったことを表す。
	ErrExchangeFailed = errors.New("token exchange failed")

	// ErrProfileFetchFailed はプロフィール取得の失敗を表す。
	// プロバイダー側またはネットワークの問題として扱う。
	ErrProfileFetchFailed = errors.New("profile fetch failed")

	// ErrUserNotFound はトークンは有効だが対応するユーザー行が
	// 存在しないことを表す。
	ErrUserNotFound = errors.New("user not found")
)

// ProviderToken はプロバイダーから取得したアクセストークンを表す。
type ProviderToken struct {
	AccessToken string
}

// Profile はプロバイダーから取得した認証済みユーザーのプロフィールを表す。
type Profile struct {
	GoogleUserID string
	Email        string
	Name         string
	AvatarURL    *string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// トークン交換とプロフィール取得を分離し、両方が成功した場合のみ
// 名寄せに進む。
type OAuthProvider interface {
	// AuthorizeURL はOAuth認証URLを生成する。
	// 設定不備の場合はErrNotConfiguredを返す。
	AuthorizeURL() (string, error)
	// ExchangeCode は認可コードをアクセストークンに交換する。
	ExchangeCode(ctx context.Context, code string) (*ProviderToken, error)
	// FetchProfile はアクセストークンでユーザー情報を取得する。
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// AccountResolver はプロバイダープロフィールをローカルユーザーに名寄せする
// インターフェース。Resolverの抽象化。
type AccountResolver interface {
	Resolve(ctx context.Context, profile *Profile) (*model.User, Outcome, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	TokenTTL time.Duration // セッショントークンの有効期間
}

// Service はログインフロー全体のオーケストレーションを行う。
// リクエスト間で保持する状態は持たず、各リクエストはトークンとストアから
// すべてを導出し直す。
type Service struct {
	oauth    OAuthProvider
	resolver AccountResolver
	users    repository.UserRepository
	codec    *token.Codec
	recorder metrics.AuthRecorder
	config   ServiceConfig
}

// NewService はServiceを生成する。
// recorderにnilを渡した場合はメトリクスを記録しない。
func NewService(
	oauth OAuthProvider,
	resolver AccountResolver,
	users repository.UserRepository,
	codec *token.Codec,
	recorder metrics.AuthRecorder,
	config ServiceConfig,
) *Service {
	if recorder == nil {
		recorder = metrics.NopAuthRecorder{}
	}
	return &Service{
		oauth:    oauth,
		resolver: resolver,
		users:    users,
		codec:    codec,
		recorder: recorder,
		config:   config,
	}
}

// LoginURL はOAuth認証URLを生成する。
// 設定不備の場合はErrNotConfiguredを返す。
func (s *Service) LoginURL() (string, error) {
	return s.oauth.AuthorizeURL()
}

// HandleCallback はOAuthコールバックを処理し、セッショントークンを発行する。
// 交換 → プロフィール取得 → 名寄せ → トークン発行の順に実行し、
// 途中で失敗した場合はトークンを発行せずエラーを返す。
// ユーザー行が書き込まれるのはこのパスだけ。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.User, string, error) {
	if code == "" {
		return nil, "", ErrMissingCode
	}

	// 1. 認可コードをアクセストークンに交換
	start := time.Now()
	providerToken, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		s.recorder.RecordLoginFailure("exchange")
		return nil, "", fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. アクセストークンでプロフィールを取得
	profile, err := s.oauth.FetchProfile(ctx, providerToken.AccessToken)
	if err != nil {
		s.recorder.RecordLoginFailure("profile")
		return nil, "", fmt.Errorf("failed to fetch profile: %w", err)
	}
	s.recorder.RecordOAuthLatency(time.Since(start))

	// 3. プロフィールをローカルユーザーに名寄せ
	user, outcome, err := s.resolver.Resolve(ctx, profile)
	if err != nil {
		s.recorder.RecordLoginFailure("resolve")
		return nil, "", fmt.Errorf("failed to resolve account: %w", err)
	}

	// 4. セッショントークンを発行
	signed, err := s.codec.Issue(user.Email, user.ID, s.config.TokenTTL)
	if err != nil {
		s.recorder.RecordLoginFailure("issue")
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}

	s.recorder.RecordLoginSuccess(string(outcome))
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("outcome", string(outcome)),
	)

	return user, signed, nil
}

// CurrentUser はセッショントークンから現在のユーザーを取得する。
// 検索はsubjectのemailを第一キーとし、ヒットしない場合はトークン内の
// ユーザーIDでフォールバックする（上流でemailが変わってもIDは安定なため）。
// トークンが無効な場合はtoken.ErrInvalid、ユーザーが存在しない場合は
// ErrUserNotFoundを返す。
func (s *Service) CurrentUser(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		s.recorder.RecordTokenInvalid()
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, claims.SubjectEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil && claims.UserID != "" {
		user, err = s.users.FindByID(ctx, claims.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to find user by ID: %w", err)
		}
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}
