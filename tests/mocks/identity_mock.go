package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/streamchat/chat-service/internal/services/identity"
)

// MockVerifier is a mock implementation of identity.Verifier.
type MockVerifier struct {
	mock.Mock
}

// Verify decodes a token into an AuthUser.
func (m *MockVerifier) Verify(ctx context.Context, token string) (*identity.AuthUser, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AuthUser), args.Error(1)
}
