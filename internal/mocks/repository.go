package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/lending-registry/internal/domain"
)

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snap *domain.RegistrySnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockSnapshotRepository) Load(ctx context.Context, name string) (*domain.RegistrySnapshot, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistrySnapshot), args.Error(1)
}

type MockSnapshotCache struct {
	mock.Mock
}

func (m *MockSnapshotCache) Get(ctx context.Context, name string) ([]byte, bool, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockSnapshotCache) Set(ctx context.Context, name string, payload []byte, ttl time.Duration) error {
	args := m.Called(ctx, name, payload, ttl)
	return args.Error(0)
}

func (m *MockSnapshotCache) Del(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// NewMockSnapshotRepository creates a new mock snapshot repository instance
func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{}
}

func NewMockSnapshotCache() *MockSnapshotCache {
	return &MockSnapshotCache{}
}
