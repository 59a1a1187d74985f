package transport

import (
	"context"

	"crm-api/internal/domain"
	"crm-api/internal/query"
	"crm-api/internal/service"

	"github.com/stretchr/testify/mock"
)

type mockCustomerService struct {
	mock.Mock
}

func (m *mockCustomerService) Create(ctx context.Context, input service.CustomerInput) (*service.CustomerResult, error) {
	args := m.Called(ctx, input)
	result, _ := args.Get(0).(*service.CustomerResult)
	return result, args.Error(1)
}

func (m *mockCustomerService) BulkCreate(ctx context.Context, rows []service.CustomerInput) (*service.BulkCustomerResult, error) {
	args := m.Called(ctx, rows)
	result, _ := args.Get(0).(*service.BulkCustomerResult)
	return result, args.Error(1)
}

func (m *mockCustomerService) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Customer], error) {
	args := m.Called(ctx, filters, orderBy, page)
	result, _ := args.Get(0).(*query.Page[*domain.Customer])
	return result, args.Error(1)
}

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) Create(ctx context.Context, input service.ProductInput) (*service.ProductResult, error) {
	args := m.Called(ctx, input)
	result, _ := args.Get(0).(*service.ProductResult)
	return result, args.Error(1)
}

func (m *mockProductService) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Product], error) {
	args := m.Called(ctx, filters, orderBy, page)
	result, _ := args.Get(0).(*query.Page[*domain.Product])
	return result, args.Error(1)
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) Create(ctx context.Context, input service.OrderInput) (*service.OrderResult, error) {
	args := m.Called(ctx, input)
	result, _ := args.Get(0).(*service.OrderResult)
	return result, args.Error(1)
}

func (m *mockOrderService) List(ctx context.Context, filters query.Filters, orderBy []string, page query.PageRequest) (*query.Page[*domain.Order], error) {
	args := m.Called(ctx, filters, orderBy, page)
	result, _ := args.Get(0).(*query.Page[*domain.Order])
	return result, args.Error(1)
}
