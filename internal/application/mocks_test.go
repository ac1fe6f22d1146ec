package application

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/wms-platform/exception-service/internal/domain"
	"github.com/wms-platform/exception-service/pkg/logging"
	"github.com/wms-platform/exception-service/pkg/metrics"
)

// Function-field mocks. The engine runs resolvers on worker pools, so
// every recorded interaction is guarded; tests inspect them after Wait
// has returned.

type mockOrderRepository struct {
	mu    sync.Mutex
	saved []*domain.Order
	items []*domain.OrderItem

	FindFn     func(ctx context.Context, params domain.SearchParameters) ([]*domain.Order, error)
	SaveFn     func(ctx context.Context, order *domain.Order) error
	SaveItemFn func(ctx context.Context, item *domain.OrderItem) error
}

func (m *mockOrderRepository) Find(ctx context.Context, params domain.SearchParameters) ([]*domain.Order, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, params)
	}
	return nil, nil
}

func (m *mockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	m.saved = append(m.saved, order)
	m.mu.Unlock()
	if m.SaveFn != nil {
		return m.SaveFn(ctx, order)
	}
	return nil
}

func (m *mockOrderRepository) SaveItem(ctx context.Context, item *domain.OrderItem) error {
	m.mu.Lock()
	m.items = append(m.items, item)
	m.mu.Unlock()
	if m.SaveItemFn != nil {
		return m.SaveItemFn(ctx, item)
	}
	return nil
}

func (m *mockOrderRepository) savedOrders() []*domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Order(nil), m.saved...)
}

func (m *mockOrderRepository) savedItems() []*domain.OrderItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.OrderItem(nil), m.items...)
}

type mockWarehouse struct {
	mu         sync.Mutex
	savedPicks []domain.PickSaveRequest

	SearchVerificationsFn func(ctx context.Context, req domain.VerificationSearchRequest) (*domain.VerificationSearchResponse, error)
	SearchPicksFn         func(ctx context.Context, req domain.PickSearchRequest) (*domain.PickSearchResponse, error)
	SavePickFn            func(ctx context.Context, req domain.PickSaveRequest) error
}

func (m *mockWarehouse) SearchVerifications(ctx context.Context, req domain.VerificationSearchRequest) (*domain.VerificationSearchResponse, error) {
	if m.SearchVerificationsFn != nil {
		return m.SearchVerificationsFn(ctx, req)
	}
	return &domain.VerificationSearchResponse{}, nil
}

func (m *mockWarehouse) SearchPicks(ctx context.Context, req domain.PickSearchRequest) (*domain.PickSearchResponse, error) {
	if m.SearchPicksFn != nil {
		return m.SearchPicksFn(ctx, req)
	}
	return &domain.PickSearchResponse{}, nil
}

func (m *mockWarehouse) SavePick(ctx context.Context, req domain.PickSaveRequest) error {
	m.mu.Lock()
	m.savedPicks = append(m.savedPicks, req)
	m.mu.Unlock()
	if m.SavePickFn != nil {
		return m.SavePickFn(ctx, req)
	}
	return nil
}

func (m *mockWarehouse) pickSaves() []domain.PickSaveRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PickSaveRequest(nil), m.savedPicks...)
}

type labelUpdate struct {
	OrderNumber string
	ItemID      string
	Label       domain.Label
}

type mockConsolidation struct {
	mu     sync.Mutex
	labels []labelUpdate
	holds  []int

	StatusFn               func(ctx context.Context, orderNumber int, transactionID string) (*domain.ConsolidatableOrder, error)
	UpdateOrderItemLabelFn func(ctx context.Context, orderNumber string, itemID string, label domain.Label) error
	HoldFn                 func(ctx context.Context, orderNumber int, transactionID string) error
}

func (m *mockConsolidation) Status(ctx context.Context, orderNumber int, transactionID string) (*domain.ConsolidatableOrder, error) {
	if m.StatusFn != nil {
		return m.StatusFn(ctx, orderNumber, transactionID)
	}
	return nil, nil
}

func (m *mockConsolidation) UpdateOrderItemLabel(ctx context.Context, orderNumber string, itemID string, label domain.Label) error {
	m.mu.Lock()
	m.labels = append(m.labels, labelUpdate{OrderNumber: orderNumber, ItemID: itemID, Label: label})
	m.mu.Unlock()
	if m.UpdateOrderItemLabelFn != nil {
		return m.UpdateOrderItemLabelFn(ctx, orderNumber, itemID, label)
	}
	return nil
}

func (m *mockConsolidation) Hold(ctx context.Context, orderNumber int, transactionID string) error {
	m.mu.Lock()
	m.holds = append(m.holds, orderNumber)
	m.mu.Unlock()
	if m.HoldFn != nil {
		return m.HoldFn(ctx, orderNumber, transactionID)
	}
	return nil
}

func (m *mockConsolidation) labelUpdates() []labelUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]labelUpdate(nil), m.labels...)
}

func (m *mockConsolidation) heldOrders() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.holds...)
}

type mockQueue struct {
	DrainFn func(ctx context.Context) ([]domain.Message, error)
}

func (m *mockQueue) Drain(ctx context.Context) ([]domain.Message, error) {
	if m.DrainFn != nil {
		return m.DrainFn(ctx)
	}
	return nil, nil
}

// testFixture bundles a fully wired engine over mocks with a frozen
// clock.
type testFixture struct {
	orders        *mockOrderRepository
	wms           *mockWarehouse
	consolidation *mockConsolidation
	queue         *mockQueue
	service       *ExceptionService
	now           time.Time
}

func newTestFixture(config ExceptionConfiguration) *testFixture {
	f := &testFixture{
		orders:        &mockOrderRepository{},
		wms:           &mockWarehouse{},
		consolidation: &mockConsolidation{},
		queue:         &mockQueue{},
		now:           time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	logConfig := logging.DefaultConfig("exception-service-test")
	logConfig.Output = io.Discard

	f.service = NewExceptionService(
		f.orders,
		f.wms,
		f.consolidation,
		f.queue,
		config,
		DefaultPoolConfig(),
		logging.New(logConfig),
		metrics.New(metrics.DefaultConfig("exception-service-test")),
	)
	f.service.now = func() time.Time { return f.now }
	return f
}

func enabledConfig() ExceptionConfiguration {
	config := DefaultExceptionConfiguration()
	config.AutoStraggleEnabled = true
	return config
}
