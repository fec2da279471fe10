package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec("test-signing-secret-32bytes-long!")
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	return c
}

// TestNewCodec_EmptySecret_ReturnsError は空シークレットで生成が失敗することを検証する。
// 既知のデフォルト値へのフォールバックは許容しない。
func TestNewCodec_EmptySecret_ReturnsError(t *testing.T) {
	_, err := NewCodec("")
	if err == nil {
		t.Fatal("expected error for empty secret")
	}
}

// TestIssueVerify_Roundtrip は発行直後のトークンが検証を通り、
// クレームが往復することを検証する。
func TestIssueVerify_Roundtrip(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name  string
		email string
		id    string
		ttl   time.Duration
	}{
		{"30min ttl", "a@x.com", "user-1", 30 * time.Minute},
		{"1sec ttl", "b@y.com", "user-2", 1 * time.Second},
		{"long ttl", "c@z.com", "user-3", 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := codec.Issue(tt.email, tt.id, tt.ttl)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}
			if signed == "" {
				t.Fatal("expected non-empty token")
			}

			claims, err := codec.Verify(signed)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if claims.SubjectEmail != tt.email {
				t.Errorf("SubjectEmail = %q, want %q", claims.SubjectEmail, tt.email)
			}
			if claims.UserID != tt.id {
				t.Errorf("UserID = %q, want %q", claims.UserID, tt.id)
			}
		})
	}
}

// TestVerify_ExpiredToken_ReturnsErrInvalid は有効期限を過ぎたトークンが
// 拒否されることを検証する。猶予期間は設けない。
func TestVerify_ExpiredToken_ReturnsErrInvalid(t *testing.T) {
	codec := newTestCodec(t)

	issued := time.Now()
	signed, err := codec.WithNow(func() time.Time { return issued }).Issue("a@x.com", "user-1", 30*time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// 有効期限の1秒後に検証する
	late := codec.WithNow(func() time.Time { return issued.Add(30*time.Minute + time.Second) })
	_, err = late.Verify(signed)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify() error = %v, want ErrInvalid", err)
	}
}

// TestVerify_JustBeforeExpiry_Succeeds は有効期限直前のトークンが
// まだ有効であることを検証する。
func TestVerify_JustBeforeExpiry_Succeeds(t *testing.T) {
	codec := newTestCodec(t)

	issued := time.Now()
	signed, err := codec.WithNow(func() time.Time { return issued }).Issue("a@x.com", "user-1", 30*time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	early := codec.WithNow(func() time.Time { return issued.Add(29 * time.Minute) })
	if _, err := early.Verify(signed); err != nil {
		t.Errorf("Verify() just before expiry error = %v", err)
	}
}

// TestVerify_TamperedSignature_ReturnsErrInvalid は署名部を改変したトークンが
// 拒否されることを検証する。
func TestVerify_TamperedSignature_ReturnsErrInvalid(t *testing.T) {
	codec := newTestCodec(t)

	signed, err := codec.Issue("a@x.com", "user-1", 30*time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// 署名の最後の1文字を差し替える
	last := signed[len(signed)-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	tampered := signed[:len(signed)-1] + string(replacement)

	_, err = codec.Verify(tampered)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify(tampered) error = %v, want ErrInvalid", err)
	}
}

// TestVerify_WrongSecret_ReturnsErrInvalid は別シークレットで署名された
// トークンが拒否されることを検証する。
func TestVerify_WrongSecret_ReturnsErrInvalid(t *testing.T) {
	codec := newTestCodec(t)

	other, err := NewCodec("another-secret-entirely-different")
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}

	signed, err := other.Issue("a@x.com", "user-1", 30*time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = codec.Verify(signed)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify() error = %v, want ErrInvalid", err)
	}
}

// TestVerify_MalformedToken_ReturnsErrInvalid は形式不正のトークンが
// すべてErrInvalidに集約されることを検証する。
func TestVerify_MalformedToken_ReturnsErrInvalid(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"two segments", "aaaa.bbbb"},
		{"whitespace", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Verify(%q) error = %v, want ErrInvalid", tt.token, err)
			}
		})
	}
}

// TestIssue_TokenDoesNotContainSecret はトークンに署名シークレットが
// 含まれないことを検証する。
func TestIssue_TokenDoesNotContainSecret(t *testing.T) {
	secret := "test-signing-secret-32bytes-long!"
	codec, err := NewCodec(secret)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}

	signed, err := codec.Issue("a@x.com", "user-1", 30*time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if strings.Contains(signed, secret) {
		t.Error("token must not embed the signing secret")
	}
}
