package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/circlekitchen/backend/internal/upstream"
)

// MockFetcher is a mock implementation of upstream.Fetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, providerID string) (upstream.Payload, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	switch v := args.Get(0).(type) {
	case string:
		return upstream.Payload(v), args.Error(1)
	default:
		return v.(upstream.Payload), args.Error(1)
	}
}

// MockObjectStorage is a mock implementation of service.ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PutObject(ctx context.Context, key, contentType string, body []byte) (string, error) {
	args := m.Called(ctx, key, contentType, body)
	return args.String(0), args.Error(1)
}
