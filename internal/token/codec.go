// Package token はセッショントークンの発行と検証を提供する。
// トークンはHS256署名付きJWTで、subjectにemail、user_idクレームに
// ユーザーIDを持つ自己完結型のベアラー資格情報。失効リストは持たない。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid は無効なトークンを表す。
// 形式不正・署名不一致・期限切れを区別せず、すべてこのエラーに集約する。
// 呼び出し側はいずれも認証失敗として扱うこと。
var ErrInvalid = errors.New("invalid token")

// Claims は検証済みトークンから取り出したクレームを表す。
type Claims struct {
	SubjectEmail string
	UserID       string
}

// sessionClaims はJWTエンコード用の内部クレーム型。
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Codec はセッショントークンの発行・検証を行う。
// nowはテスト用に差し替え可能で、nilの場合はtime.Nowを使用する。
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec はCodecを生成する。
// 既知のデフォルト値へのフォールバックは行わず、secretが空の場合はエラーを返す。
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("token signing secret is required")
	}
	return &Codec{secret: []byte(secret), now: time.Now}, nil
}

// WithNow は現在時刻の取得関数を差し替えたCodecを返す。テスト用。
func (c *Codec) WithNow(now func() time.Time) *Codec {
	return &Codec{secret: c.secret, now: now}
}

// Issue はsubjectEmailとuserIDを束ねたトークンを発行する。
// 有効期限は現在時刻 + ttlの絶対時刻。
func (c *Codec) Issue(subjectEmail, userID string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectEmail,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、クレームを返す。
// 検証に失敗した場合は理由を問わずErrInvalidを返す。
// 有効期限の猶予（クロックスキュー許容）は設けない。
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &parsed, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, ErrInvalid
	}

	if parsed.Subject == "" {
		return nil, ErrInvalid
	}

	return &Claims{
		SubjectEmail: parsed.Subject,
		UserID:       parsed.UserID,
	}, nil
}
