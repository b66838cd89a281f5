package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dossier/internal/models/db_models"
)

// AccountRepository stores buyer and admin accounts. Lookups return nil, nil
// when no account matches.
type AccountRepository interface {
	InsertTx(account *db_models.Account, ctx context.Context) error
	FindById(ctx context.Context, id string) (*db_models.Account, error)
	FindByEmail(ctx context.Context, email string) (*db_models.Account, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role string) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (a *accountRepository) InsertTx(account *db_models.Account, ctx context.Context) error {
	return a.db.WithContext(ctx).Create(account).Error
}

func (a *accountRepository) FindById(ctx context.Context, id string) (*db_models.Account, error) {
	return a.first(ctx, "id = ?", id)
}

func (a *accountRepository) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	return a.first(ctx, "email = ?", email)
}

func (a *accountRepository) first(ctx context.Context, query string, arg any) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).Where(query, arg).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (a *accountRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return a.update(ctx, id, "password_hash", passwordHash)
}

func (a *accountRepository) UpdateRole(ctx context.Context, id string, role string) error {
	return a.update(ctx, id, "role", role)
}

func (a *accountRepository) update(ctx context.Context, id, column string, value any) error {
	res := a.db.WithContext(ctx).Model(&db_models.Account{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
