package repository

import (
	"context"

	"rbac/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TokenRepository interface {
	// Upsert stores the pair as the only one for its user, replacing any previous row.
	Upsert(ctx context.Context, token *model.Token) error
	FindByUserAndRefresh(ctx context.Context, userID, refreshToken string) (*model.Token, error)
	DeleteByRefresh(ctx context.Context, refreshToken string) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Upsert(ctx context.Context, token *model.Token) error {
	return translate(GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "updated_at"}),
	}).Create(token).Error)
}

func (r *tokenRepository) FindByUserAndRefresh(ctx context.Context, userID, refreshToken string) (*model.Token, error) {
	var token model.Token
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND refresh_token = ?", userID, refreshToken).
		First(&token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *tokenRepository) DeleteByRefresh(ctx context.Context, refreshToken string) (int64, error) {
	res := GetDB(ctx, r.db).Where("refresh_token = ?", refreshToken).Delete(&model.Token{})
	return res.RowsAffected, res.Error
}
