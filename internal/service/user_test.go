package service

import (
	"context"
	"testing"

	"event-admission/internal/model"
	"event-admission/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     model.CreateUserRequest
		wantErr bool
	}{
		{name: "valid", req: model.CreateUserRequest{Name: "Ana", Email: "ana@example.com"}},
		{name: "missing name", req: model.CreateUserRequest{Email: "ana@example.com"}, wantErr: true},
		{name: "missing email", req: model.CreateUserRequest{Name: "Ana"}, wantErr: true},
		{name: "no at sign", req: model.CreateUserRequest{Name: "Ana", Email: "ana.example.com"}, wantErr: true},
		{name: "no domain dot", req: model.CreateUserRequest{Name: "Ana", Email: "ana@example"}, wantErr: true},
		{name: "empty local part", req: model.CreateUserRequest{Name: "Ana", Email: "@example.com"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(repository.NewMemoryStore().Users())

			user, err := svc.Create(context.Background(), tt.req)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, user.ID)
		})
	}
}

func TestUserCreate_NormalisesEmail(t *testing.T) {
	svc := NewUserService(repository.NewMemoryStore().Users())

	user, err := svc.Create(context.Background(), model.CreateUserRequest{Name: "Ana", Email: "  Ana@Example.COM "})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	svc := NewUserService(repository.NewMemoryStore().Users())
	ctx := context.Background()

	_, err := svc.Create(ctx, model.CreateUserRequest{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	// Case differences collapse into the same normalised address.
	_, err = svc.Create(ctx, model.CreateUserRequest{Name: "Other", Email: "ANA@example.com"})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
}
