package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"netmobcli/internal/cube"
	"netmobcli/internal/spatial"
)

// MockStore is a mock for spatial.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context, region string) (*spatial.Correspondence, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spatial.Correspondence), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, c *spatial.Correspondence) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockLayerSource is a mock for LayerSource
type MockLayerSource struct {
	mock.Mock
}

func (m *MockLayerSource) TileLayer(ctx context.Context, city string) ([]spatial.Tile, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]spatial.Tile), args.Error(1)
}

func (m *MockLayerSource) ZoneLayer(ctx context.Context) ([]spatial.Zone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]spatial.Zone), args.Error(1)
}

// MockSliceLoader is a mock for cube.SliceLoader
type MockSliceLoader struct {
	mock.Mock
}

func (m *MockSliceLoader) LoadSlice(ctx context.Context, key cube.SliceKey) (*cube.Slice, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cube.Slice), args.Error(1)
}
