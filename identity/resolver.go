// 第三方登入後對應或建立本地使用者
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"idbridge/models"
	"idbridge/provider"
)

var (
	ErrUserInactive = errors.New("user is inactive")
)

type Resolver struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewResolver(db *gorm.DB, logger *slog.Logger) *Resolver {
	return &Resolver{
		db:     db,
		logger: logger.With(slog.String("caller", "identity.Resolver")),
	}
}

// Resolve 依序以 (external_id, source)、email 找出本地使用者，都找不到時建立新使用者。
// 以 email 找到時會綁定第三方身分。停用的使用者回傳 ErrUserInactive。
func (r *Resolver) Resolve(ctx context.Context, identity *provider.Identity) (*models.User, error) {
	const op = "identity.Resolver.Resolve"

	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("[%s] %w", op, err)
	}

	var user *models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := r.resolve(tx, identity)
		if err != nil {
			return err
		}
		user = found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to resolve user, source=%s, err=%w", op, identity.Source, err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("[%s] %w: %s", op, ErrUserInactive, user.Email)
	}
	return user, nil
}

func (r *Resolver) resolve(tx *gorm.DB, identity *provider.Identity) (*models.User, error) {
	var user models.User

	err := tx.Where("external_id = ? AND auth_source = ?", identity.ExternalID, identity.Source).Take(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if identity.Email != "" {
		err = tx.Where("email = ?", identity.Email).Take(&user).Error
		if err == nil {
			if err := tx.Model(&user).Updates(map[string]any{
				"external_id": identity.ExternalID,
				"auth_source": identity.Source,
			}).Error; err != nil {
				return nil, err
			}
			r.logger.Info("Linked third-party identity to existing user",
				slog.String("source", identity.Source),
				slog.String("user_id", user.ID.String()),
			)
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	user = models.User{
		Email:      identity.Email,
		Username:   identity.Username,
		Phone:      identity.Phone,
		Avatar:     identity.Avatar,
		ExternalID: identity.ExternalID,
		AuthSource: identity.Source,
		IsVerified: true,
		IsActive:   true,
	}
	if user.Email == "" {
		user.Email = fmt.Sprintf("%s@%s.local", identity.ExternalID, identity.Source)
	}
	if user.Username == "" {
		user.Username = identity.ExternalID
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	r.logger.Info("Created user from third-party login",
		slog.String("source", identity.Source),
		slog.String("user_id", user.ID.String()),
	)
	return &user, nil
}
