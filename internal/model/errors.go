// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, provider, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeOAuthNotConfigured = "OAUTH_NOT_CONFIGURED"
	ErrCodeMissingAuthCode    = "MISSING_AUTH_CODE"
	ErrCodeExchangeFailed     = "EXCHANGE_FAILED"
	ErrCodeProfileFetchFailed = "PROFILE_FETCH_FAILED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
)

// NewOAuthNotConfiguredError はOAuth設定不備エラーを生成する。
// クライアントIDが未設定のままログインフローを開始しようとした場合に返す。
func NewOAuthNotConfiguredError() *APIError {
	return &APIError{
		Code:     ErrCodeOAuthNotConfigured,
		Message:  "Google OAuthが設定されていません。",
		Category: "system",
		Action:   "管理者に連絡してください。",
	}
}

// NewMissingAuthCodeError は認可コード欠落エラーを生成する。
func NewMissingAuthCodeError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingAuthCode,
		Message:  "認可コードが指定されていません。",
		Category: "validation",
		Action:   "ログインを最初からやり直してください。",
	}
}

// NewExchangeFailedError はトークン交換失敗エラーを生成する。
// プロバイダーがアクセストークンを返さなかった場合に返す。
func NewExchangeFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeExchangeFailed,
		Message:  "Googleからアクセストークンを取得できませんでした。",
		Category: "provider",
		Action:   "ログインを最初からやり直してください。",
	}
}

// NewProfileFetchFailedError はプロフィール取得失敗エラーを生成する。
func NewProfileFetchFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileFetchFailed,
		Message:  "Googleからユーザー情報を取得できませんでした。",
		Category: "provider",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewTokenInvalidError は無効トークンエラーを生成する。
// 形式不正・署名不一致・期限切れはすべてこのエラーに集約する。
func NewTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenInvalid,
		Message:  "セッショントークンが無効です。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
