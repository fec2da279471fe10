package model

import "testing"

func TestAPIError_Error(t *testing.T) {
	err := &APIError{
		Code:    "TOKEN_INVALID",
		Message: "セッショントークンが無効です。",
	}

	want := "[TOKEN_INVALID] セッショントークンが無効です。"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		err          *APIError
		wantCode     string
		wantCategory string
	}{
		{"OAuth設定不備", NewOAuthNotConfiguredError(), ErrCodeOAuthNotConfigured, "system"},
		{"認可コード欠落", NewMissingAuthCodeError(), ErrCodeMissingAuthCode, "validation"},
		{"トークン交換失敗", NewExchangeFailedError(), ErrCodeExchangeFailed, "provider"},
		{"プロフィール取得失敗", NewProfileFetchFailedError(), ErrCodeProfileFetchFailed, "provider"},
		{"無効トークン", NewTokenInvalidError(), ErrCodeTokenInvalid, "auth"},
		{"ユーザー不在", NewUserNotFoundError(), ErrCodeUserNotFound, "auth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", tt.err.Category, tt.wantCategory)
			}
			if tt.err.Message == "" {
				t.Error("Message is empty")
			}
			if tt.err.Action == "" {
				t.Error("Action is empty")
			}
		})
	}
}
