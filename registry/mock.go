package registry

import (
	"context"

	"github.com/ruteri/project-nft-registry/interfaces"
	"github.com/stretchr/testify/mock"
)

var _ interfaces.ProjectRegistry = (*MockRegistry)(nil)

// MockRegistry mocks the ProjectRegistry interface
type MockRegistry struct {
	mock.Mock
}

// Initialize mocks the Initialize method
func (m *MockRegistry) Initialize(ctx context.Context, admin interfaces.Address) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

// Mint mocks the Mint method
func (m *MockRegistry) Mint(ctx context.Context, to interfaces.Address, projectID string, contentPointer string) (interfaces.TokenID, error) {
	args := m.Called(ctx, to, projectID, contentPointer)
	return args.Get(0).(interfaces.TokenID), args.Error(1)
}

// Transfer mocks the Transfer method
func (m *MockRegistry) Transfer(ctx context.Context, from interfaces.Address, to interfaces.Address, tokenID interfaces.TokenID) error {
	args := m.Called(ctx, from, to, tokenID)
	return args.Error(0)
}

// OwnerOf mocks the OwnerOf method
func (m *MockRegistry) OwnerOf(ctx context.Context, tokenID interfaces.TokenID) (interfaces.Address, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(interfaces.Address), args.Error(1)
}

// GetMetadata mocks the GetMetadata method
func (m *MockRegistry) GetMetadata(ctx context.Context, tokenID interfaces.TokenID) (interfaces.ProjectMetadata, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(interfaces.ProjectMetadata), args.Error(1)
}

// Version mocks the Version method
func (m *MockRegistry) Version() string {
	args := m.Called()
	return args.String(0)
}

// MockAuthorizer mocks the Authorizer interface
type MockAuthorizer struct {
	mock.Mock
}

// RequireAuth mocks the RequireAuth method
func (m *MockAuthorizer) RequireAuth(ctx context.Context, addr interfaces.Address) (interfaces.Authorization, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).(interfaces.Authorization), args.Error(1)
}
