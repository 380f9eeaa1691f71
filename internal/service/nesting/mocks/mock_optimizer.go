package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/piwi3910/SlabNest/internal/model"
)

// MockOptimizer is a testify mock of nesting.Optimizer.
type MockOptimizer struct {
	mock.Mock
}

// NewMockOptimizer creates a mock whose expectations are asserted on cleanup.
func NewMockOptimizer(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOptimizer {
	m := &MockOptimizer{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockOptimizer) Optimize(ctx context.Context, parts []model.Part, slabs []model.Slab) (model.NestingResult, error) {
	ret := m.Called(ctx, parts, slabs)

	var r0 model.NestingResult
	if rf, ok := ret.Get(0).(func(context.Context, []model.Part, []model.Slab) model.NestingResult); ok {
		r0 = rf(ctx, parts, slabs)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(model.NestingResult)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, []model.Part, []model.Slab) error); ok {
		r1 = rf(ctx, parts, slabs)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
