package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/cinelog/internal/model"
	"github.com/hitoshi/cinelog/internal/repository"
)

// Outcome は名寄せ結果の種別を表す。
// 公開APIはUserだけを返すが、どの分岐を通ったかをテストとログで
// 検証できるようにタグ付きで保持する。
type Outcome string

const (
	// OutcomeUpdated はgoogle_id一致の既存ユーザーのプロフィール更新を示す。
	OutcomeUpdated Outcome = "updated"
	// OutcomeLinked はemail一致の既存ユーザーへのgoogle_id紐付けを示す。
	OutcomeLinked Outcome = "linked"
	// OutcomeCreated は新規ユーザーの作成を示す。
	OutcomeCreated Outcome = "created"
)

// Resolver はGoogleプロフィールをローカルユーザー1行に名寄せする。
//
// 名寄せの優先順位は厳密に以下の通り:
//  1. google_id一致 → name/avatar_urlを更新して返す
//  2. email一致 → google_id/avatar_urlを紐付けて返す（emailは変更しない）
//  3. どちらも無し → 新規IDで作成する
//
// 並行コールバックが同じ新規email/google_idで競合した場合、ストアの
// 一意制約が二重作成を防ぐ。一意制約違反は致命的エラーではなく、
// 再検索による1回のリトライで回復する。
type Resolver struct {
	users repository.UserRepository
}

// NewResolver はResolverを生成する。
func NewResolver(users repository.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// Resolve はプロフィールをユーザー行に名寄せし、通った分岐と共に返す。
// ユーザー行が作成されるのはこのメソッドの中だけで、参照系の操作が
// 行を作ることはない。
func (r *Resolver) Resolve(ctx context.Context, profile *Profile) (*model.User, Outcome, error) {
	user, outcome, err := r.resolveOnce(ctx, profile)
	if errors.Is(err, repository.ErrConflict) {
		// 並行コールバックとの競合。相手側の行が見えるはずなので再検索する。
		slog.Info("resolve conflict, retrying lookup",
			slog.String("email", profile.Email),
		)
		user, outcome, err = r.resolveOnce(ctx, profile)
	}
	if err != nil {
		return nil, "", err
	}
	return user, outcome, nil
}

// resolveOnce は名寄せの3分岐を1回実行する。
func (r *Resolver) resolveOnce(ctx context.Context, profile *Profile) (*model.User, Outcome, error) {
	// 1. google_idで検索
	user, err := r.users.FindByGoogleID(ctx, profile.GoogleUserID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user by google ID: %w", err)
	}
	if user != nil {
		if err := r.users.UpdateProfile(ctx, user.ID, profile.Name, profile.AvatarURL); err != nil {
			return nil, "", fmt.Errorf("failed to update user profile: %w", err)
		}
		user.Name = profile.Name
		user.AvatarURL = profile.AvatarURL
		return user, OutcomeUpdated, nil
	}

	// 2. emailで検索（プロバイダー未リンクの既存アカウント）
	user, err = r.users.FindByEmail(ctx, profile.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if user != nil {
		if err := r.users.LinkGoogleID(ctx, user.ID, profile.GoogleUserID, profile.AvatarURL); err != nil {
			return nil, "", fmt.Errorf("failed to link google ID: %w", err)
		}
		googleID := profile.GoogleUserID
		user.GoogleID = &googleID
		user.AvatarURL = profile.AvatarURL
		return user, OutcomeLinked, nil
	}

	// 3. 新規作成
	googleID := profile.GoogleUserID
	newUser := &model.User{
		ID:        uuid.New().String(),
		Name:      profile.Name,
		Email:     profile.Email,
		GoogleID:  &googleID,
		AvatarURL: profile.AvatarURL,
	}
	if err := r.users.Create(ctx, newUser); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, OutcomeCreated, nil
}
