package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"dossier/internal/models/db_models"
	"dossier/internal/models/request_models"
	"dossier/internal/models/response_models"
	"dossier/internal/repositories"
	mem "dossier/pkg/memcache"
	"dossier/pkg/utils"
)

const (
	resetCodeLength = 6
	resetCodeTTL    = 15 * time.Minute
)

type AccountServiceInterface interface {
	Login(request request_models.LoginRequest, ctx context.Context) (*response_models.AccountLoginResponse, error)
	CreateAccount(request request_models.SignUpRequest, ctx context.Context) error
	Me(ctx context.Context, accountID string) (*response_models.AccountResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, request request_models.ResetPasswordRequest) error
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	resetCodes  mem.ResetCodeStore
	mail        IMailService
	logger      *zap.Logger
}

func NewAccountService(
	accountRepo repositories.AccountRepository,
	resetCodes mem.ResetCodeStore,
	mail IMailService,
	logger *zap.Logger,
) AccountServiceInterface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accountRepo: accountRepo,
		resetCodes:  resetCodes,
		mail:        mail,
		logger:      logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *AccountService) Login(request request_models.LoginRequest, ctx context.Context) (*response_models.AccountLoginResponse, error) {
	startTime := time.Now()

	account, err := a.accountRepo.FindByEmail(ctx, normalizeEmail(request.Email))
	if err != nil {
		a.logger.Error("find account by email", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := utils.CreateToken(account.ID, account.Role)
	if err != nil {
		a.logger.Error("create token", zap.Error(err))
		return nil, err
	}

	a.logger.Debug("login processed", zap.Duration("took", time.Since(startTime)))
	return &response_models.AccountLoginResponse{
		Token:     token,
		ExpiresIn: int64(time.Hour / time.Second),
	}, nil
}

func (a *AccountService) CreateAccount(request request_models.SignUpRequest, ctx context.Context) error {
	email := normalizeEmail(request.Email)
	existingAccount, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existingAccount != nil {
		return utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return err
	}

	newAccount := &db_models.Account{
		Name:         strings.TrimSpace(request.DisplayName),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         "buyer",
	}
	if err := a.accountRepo.InsertTx(newAccount, ctx); err != nil {
		a.logger.Error("insert account", zap.Error(err))
		return utils.ErrDatabaseError
	}
	return nil
}

func (a *AccountService) Me(ctx context.Context, accountID string) (*response_models.AccountResponse, error) {
	account, err := a.accountRepo.FindById(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	return &response_models.AccountResponse{
		ID:    account.ID.String(),
		Name:  account.Name,
		Email: account.Email,
		Role:  account.Role,
	}, nil
}

// RequestPasswordReset mails a one-time code. Unknown emails succeed
// silently so the endpoint does not reveal which accounts exist.
func (a *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	account, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		a.logger.Info("password reset requested for unknown email")
		return nil
	}

	code, err := utils.GenerateOtpCode(resetCodeLength)
	if err != nil {
		return err
	}
	a.resetCodes.Set(email, code, resetCodeTTL)
	if err := a.mail.SendPasswordResetCode(account.Email, code); err != nil {
		a.logger.Error("send reset code", zap.Error(err))
		return err
	}
	return nil
}

func (a *AccountService) ResetPassword(ctx context.Context, request request_models.ResetPasswordRequest) error {
	email := normalizeEmail(request.Email)
	if !a.resetCodes.Consume(email, request.Code) {
		return utils.ErrInvalidCredentials
	}
	account, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}

	hashedPassword, err := utils.HashPassword(request.NewPassword)
	if err != nil {
		return err
	}
	if err := a.accountRepo.UpdatePassword(ctx, account.ID.String(), hashedPassword); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}
