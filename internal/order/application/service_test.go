package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/wyfcoding/medsupply/internal/catalog/domain"
	"github.com/wyfcoding/medsupply/internal/order/domain"
	"github.com/wyfcoding/medsupply/pkg/utils"
)

// fakeOrderRepo 内存订单仓储，复刻条件扣减语义：
// 整单校验通过才扣减，任一行不足则整单拒绝且不产生任何扣减。
type fakeOrderRepo struct {
	mu     sync.Mutex
	stock  map[uint]int
	names  map[uint]string
	orders map[uint]*domain.Order
	nextID uint
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		stock:  make(map[uint]int),
		names:  make(map[uint]string),
		orders: make(map[uint]*domain.Order),
	}
}

func (r *fakeOrderRepo) addProduct(id uint, name string, stock int) {
	r.stock[id] = stock
	r.names[id] = name
}

func (r *fakeOrderRepo) PlaceOrder(_ context.Context, order *domain.Order, lines []domain.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, line := range lines {
		name, ok := r.names[line.ProductID]
		if !ok {
			return &domain.InsufficientStockError{Product: "unknown"}
		}
		if r.stock[line.ProductID] < line.Quantity {
			return &domain.InsufficientStockError{Product: name}
		}
	}

	for _, line := range lines {
		r.stock[line.ProductID] -= line.Quantity
	}

	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = time.Now()
	for _, line := range lines {
		productID := line.ProductID
		order.Items = append(order.Items, domain.OrderItem{
			OrderID:   order.ID,
			ProductID: &productID,
			Product:   &catalogdomain.Product{Name: r.names[line.ProductID]},
			Quantity:  line.Quantity,
		})
	}
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uint) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID uint) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListAll(_ context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatusNotes(_ context.Context, id uint, status *domain.OrderStatus, notes *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if status != nil {
		order.Status = *status
	}
	if notes != nil {
		order.Notes = *notes
	}
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

// recordingNotifier 记录通知调用，可配置为失败
type recordingNotifier struct {
	err    error
	called chan *domain.Order
}

func newRecordingNotifier(err error) *recordingNotifier {
	return &recordingNotifier{err: err, called: make(chan *domain.Order, 16)}
}

func (n *recordingNotifier) NotifyOrderPlaced(_ context.Context, order *domain.Order) error {
	n.called <- order
	return n.err
}

func newService(repo *fakeOrderRepo, notifier domain.Notifier) *OrderApplicationService {
	return NewOrderApplicationService(repo, nil, notifier, utils.NewSnowflakeID(1), nil)
}

func TestPlaceOrderSuccess(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addProduct(1, "Gants nitrile", 10)
	repo.addProduct(2, "Seringue 5 ml", 10)
	svc := newService(repo, nil)

	order, err := svc.PlaceOrder(context.Background(), 42, []domain.OrderLine{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 2},
	}, "urgent")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.OrderNo, "ORD-"))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, uint(42), order.UserID)
	assert.Len(t, order.Items, 2)
	// 扣减数量与下单数量一致
	assert.Equal(t, 7, repo.stock[1])
	assert.Equal(t, 8, repo.stock[2])
}

func TestPlaceOrderEmptyRejected(t *testing.T) {
	svc := newService(newFakeOrderRepo(), nil)

	_, err := svc.PlaceOrder(context.Background(), 1, nil, "")

	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

func TestPlaceOrderNonPositiveQuantityRejected(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addProduct(1, "Gants nitrile", 10)
	svc := newService(repo, nil)

	_, err := svc.PlaceOrder(context.Background(), 1, []domain.OrderLine{{ProductID: 1, Quantity: 0}}, "")

	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
	assert.Equal(t, 10, repo.stock[1])
}

func TestPlaceOrderInsufficientStockRejectsWholeOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addProduct(1, "Gants nitrile", 10)
	repo.addProduct(2, "Seringue 5 ml", 1)
	svc := newService(repo, nil)

	_, err := svc.PlaceOrder(context.Background(), 1, []domain.OrderLine{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 5},
	}, "")

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Seringue 5 ml", stockErr.Product)
	// 任何一行都未被扣减
	assert.Equal(t, 10, repo.stock[1])
	assert.Equal(t, 1, repo.stock[2])
}

func TestPlaceOrderConcurrentNeverOversells(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addProduct(1, "Gants nitrile", 5)
	svc := newService(repo, nil)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), 1, []domain.OrderLine{{ProductID: 1, Quantity: 1}}, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		var stockErr *domain.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		rejected++
	}

	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, rejected)
	assert.Equal(t, 0, repo.stock[1])
}

func TestPlaceOrderNotifierFailureDoesNotFailOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addProduct(1, "Gants nitrile", 10)
	notifier := newRecordingNotifier(errors.New("smtp down"))
	svc := newService(repo, notifier)

	order, err := svc.PlaceOrder(context.Background(), 1, []domain.OrderLine{{ProductID: 1, Quantity: 1}}, "")

	require.NoError(t, err)
	select {
	case notified := <-notifier.called:
		assert.Equal(t, order.OrderNo, notified.OrderNo)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was never invoked")
	}
	// 通知失败不影响已提交的订单
	_, err = svc.GetOrder(context.Background(), Caller{UserID: 1}, order.ID)
	assert.NoError(t, err)
}

func TestGetOrderOwnerOnly(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addProduct(1, "Gants nitrile", 10)
	svc := newService(repo, nil)

	order, err := svc.PlaceOrder(context.Background(), 7, []domain.OrderLine{{ProductID: 1, Quantity: 1}}, "")
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), Caller{UserID: 8}, order.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	got, err := svc.GetOrder(context.Background(), Caller{UserID: 8, Admin: true}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestUpdateOrderPermissions(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addProduct(1, "Gants nitrile", 10)
	svc := newService(repo, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, 7, []domain.OrderLine{{ProductID: 1, Quantity: 1}}, "")
	require.NoError(t, err)

	// 所有者可改备注
	notes := "livraison au bloc B"
	updated, err := svc.UpdateOrder(ctx, Caller{UserID: 7}, order.ID, UpdateOrderInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)

	// 所有者不可改状态
	status := domain.OrderStatusCompleted
	_, err = svc.UpdateOrder(ctx, Caller{UserID: 7}, order.ID, UpdateOrderInput{Status: &status})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	// 非所有者被拒绝
	_, err = svc.UpdateOrder(ctx, Caller{UserID: 8}, order.ID, UpdateOrderInput{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	// 管理员可改状态
	updated, err = svc.UpdateOrder(ctx, Caller{UserID: 1, Admin: true}, order.ID, UpdateOrderInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, updated.Status)
}

func TestUpdateOrderInvalidStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addProduct(1, "Gants nitrile", 10)
	svc := newService(repo, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, 7, []domain.OrderLine{{ProductID: 1, Quantity: 1}}, "")
	require.NoError(t, err)

	bad := domain.OrderStatus("SHIPPED")
	_, err = svc.UpdateOrder(ctx, Caller{UserID: 1, Admin: true}, order.ID, UpdateOrderInput{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDeleteOrderAdminOnly(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addProduct(1, "Gants nitrile", 10)
	svc := newService(repo, nil)
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, 7, []domain.OrderLine{{ProductID: 1, Quantity: 1}}, "")
	require.NoError(t, err)

	err = svc.DeleteOrder(ctx, Caller{UserID: 7}, order.ID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	require.NoError(t, svc.DeleteOrder(ctx, Caller{UserID: 1, Admin: true}, order.ID))
	_, err = svc.GetOrder(ctx, Caller{UserID: 1, Admin: true}, order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestListOrdersVisibility(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.addProduct(1, "Gants nitrile", 100)
	svc := newService(repo, nil)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, 7, []domain.OrderLine{{ProductID: 1, Quantity: 1}}, "")
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, 8, []domain.OrderLine{{ProductID: 1, Quantity: 1}}, "")
	require.NoError(t, err)

	mine, err := svc.ListOrders(ctx, Caller{UserID: 7})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListOrders(ctx, Caller{UserID: 1, Admin: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
