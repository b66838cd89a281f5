package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier/internal/models/db_models"
	"dossier/internal/repositories"
)

type fakeAccounts struct {
	repositories.AccountRepository
	byEmail map[string]*db_models.Account
	closed  bool
}

func (f *fakeAccounts) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	return f.byEmail[email], nil
}

func (f *fakeAccounts) UpdateRole(ctx context.Context, id string, role string) error {
	for _, a := range f.byEmail {
		if a.ID.String() == id {
			a.Role = role
		}
	}
	return nil
}

func run(t *testing.T, b backend, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(b)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigCheck(t *testing.T) {
	out, err := run(t, backend{}, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration OK")
	assert.Contains(t, out, "context")

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("modules: []\n"), 0o600))
	_, err = run(t, backend{}, "config", "check", path)
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	called := false
	b := backend{migrate: func(ctx context.Context) error {
		called = true
		return nil
	}}
	out, err := run(t, b, "migrate")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, out, "schema up to date")

	b.migrate = func(ctx context.Context) error { return errors.New("connection refused") }
	_, err = run(t, b, "migrate")
	assert.ErrorContains(t, err, "connection refused")
}

func TestPromote(t *testing.T) {
	account := &db_models.Account{BaseModel: db_models.BaseModel{ID: uuid.New()}, Email: "lead@city.test", Role: "buyer"}
	repo := &fakeAccounts{byEmail: map[string]*db_models.Account{account.Email: account}}
	b := backend{accounts: func(ctx context.Context) (repositories.AccountRepository, func(), error) {
		return repo, func() { repo.closed = true }, nil
	}}

	out, err := run(t, b, "promote", " Lead@City.test ")
	require.NoError(t, err)
	assert.Equal(t, "admin", account.Role)
	assert.Contains(t, out, "lead@city.test is now admin")
	assert.True(t, repo.closed)

	_, err = run(t, b, "promote", "lead@city.test", "--role", "buyer")
	require.NoError(t, err)
	assert.Equal(t, "buyer", account.Role)

	_, err = run(t, b, "promote", "ghost@city.test")
	assert.ErrorContains(t, err, "no account")

	_, err = run(t, b, "promote", "lead@city.test", "--role", "root")
	assert.ErrorContains(t, err, "unknown role")
}
