// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// emailとgoogle_idはそれぞれ一意制約を持ち、1つのプロフィールに対して
// 高々1行だけが存在することをストア側で保証する。
type User struct {
	ID        string
	Name      string
	Email     string
	GoogleID  *string // 未リンクのユーザー（事前登録等）はnil
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser はAPIレスポンス用のユーザー公開情報。
// 内部タイムスタンプやリンク状態は含めない。
type PublicUser struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

// Public はUserから公開プロジェクションを生成する。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}
