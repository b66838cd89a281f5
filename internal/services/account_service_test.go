package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/internal/models/request_models"
	mem "dossier/pkg/memcache"
	"dossier/pkg/utils"
)

func TestAccountService(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	ctx := context.Background()
	repo := newMemAccountRepo()
	mail := &recordingMail{}
	svc := NewAccountService(repo, mem.NewResetCodes(), mail, nil)

	signUp := request_models.SignUpRequest{DisplayName: "Buyer One", Email: " Buyer@Example.org ", Password: "first-pass"}
	require.NoError(t, svc.CreateAccount(signUp, ctx))

	t.Run("duplicate email is rejected", func(t *testing.T) {
		err := svc.CreateAccount(signUp, ctx)
		assert.ErrorIs(t, err, utils.ErrEmailAlreadyExists)
	})

	t.Run("login", func(t *testing.T) {
		token, err := svc.Login(request_models.LoginRequest{Email: "buyer@example.org", Password: "first-pass"}, ctx)
		require.NoError(t, err)
		claims, err := utils.ValidateToken(token.Token)
		require.NoError(t, err)
		assert.Equal(t, "buyer", claims.Role)

		_, err = svc.Login(request_models.LoginRequest{Email: "buyer@example.org", Password: "wrong-pass"}, ctx)
		assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
		_, err = svc.Login(request_models.LoginRequest{Email: "nobody@example.org", Password: "first-pass"}, ctx)
		assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
	})

	t.Run("password reset", func(t *testing.T) {
		require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@example.org"))
		assert.Empty(t, mail.messages(), "unknown emails get no mail")

		require.NoError(t, svc.RequestPasswordReset(ctx, "BUYER@example.org"))
		sent := mail.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, "reset", sent[0].kind)
		code := sent[0].body
		assert.Len(t, code, 6)

		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}
		err := svc.ResetPassword(ctx, request_models.ResetPasswordRequest{Email: "buyer@example.org", Code: wrong, NewPassword: "second-pass"})
		assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

		require.NoError(t, svc.ResetPassword(ctx, request_models.ResetPasswordRequest{Email: "buyer@example.org", Code: code, NewPassword: "second-pass"}))
		_, err = svc.Login(request_models.LoginRequest{Email: "buyer@example.org", Password: "second-pass"}, ctx)
		assert.NoError(t, err)

		err = svc.ResetPassword(ctx, request_models.ResetPasswordRequest{Email: "buyer@example.org", Code: code, NewPassword: "third-pass"})
		assert.ErrorIs(t, err, utils.ErrInvalidCredentials, "codes are single use")
	})
}
