// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/cinelog/internal/model"
)

// ErrConflict は一意制約違反を表す。
// 同一のemailまたはgoogle_idに対して並行コールバックが競合した場合に発生する。
// 呼び出し側は再検索によるリトライで回復できる。
var ErrConflict = errors.New("unique constraint conflict")

// UserRepository はユーザーデータの永続化インターフェース。
// Find系メソッドは見つからない場合に(nil, nil)を返す。
// 書き込み系メソッドはいずれも単一SQL文で実行され、文単位でアトミックになる。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定emailのユーザーを取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByGoogleID は指定google_idのユーザーを取得する。
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)

	// Create は新規ユーザーを作成する。
	// email/google_idの一意制約に違反した場合はErrConflictを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile は既存ユーザーのname/avatar_urlを上書きする。
	// email/google_idは変更しない。
	UpdateProfile(ctx context.Context, id, name string, avatarURL *string) error

	// LinkGoogleID は既存ユーザーにgoogle_idを紐付け、avatar_urlを更新する。
	// 別のユーザーが同じgoogle_idを持つ場合はErrConflictを返す。
	LinkGoogleID(ctx context.Context, id, googleID string, avatarURL *string) error
}
