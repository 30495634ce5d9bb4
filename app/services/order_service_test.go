package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
)

type orderFixture struct {
	orders   *fakeOrderRepo
	products *fakeProductRepo
	accounts *fakeAccountRepo
	svc      *OrderService
	worker   rbac.Principal
	product  *models.Product
}

func newOrderFixture(t *testing.T, stock int64) *orderFixture {
	t.Helper()

	orders := newFakeOrderRepo()
	products := newFakeProductRepo()
	accounts := newFakeAccountRepo()

	acc := &models.Account{Username: "ravi", Password: "x"}
	require.NoError(t, accounts.Create(context.Background(), rbac.RoleWorker, acc))

	product := &models.Product{Name: "Steel Bolt", Price: 2.5, Stock: stock}
	require.NoError(t, products.Create(context.Background(), product))

	return &orderFixture{
		orders:   orders,
		products: products,
		accounts: accounts,
		svc:      NewOrderService(orders, products, accounts),
		worker:   acc.Principal(),
		product:  product,
	}
}

func (f *orderFixture) stock(t *testing.T) int64 {
	t.Helper()
	p, err := f.products.FindByID(context.Background(), f.product.ID)
	require.NoError(t, err)
	return p.Stock
}

func TestPlaceOrderDeductsStock(t *testing.T) {
	f := newOrderFixture(t, 10)

	order, err := f.svc.PlaceOrder(context.Background(), f.worker, models.OrderInput{
		ProductID:    f.product.ID.Hex(),
		Quantity:     3,
		CustomerName: "Acme Corp",
	})
	require.NoError(t, err)

	assert.EqualValues(t, 3, order.Quantity)
	assert.EqualValues(t, 2.5, order.UnitPrice)
	assert.EqualValues(t, 7.5, order.TotalPrice)
	assert.EqualValues(t, 7, f.stock(t))

	// The order landed in the worker's history.
	acc, err := f.accounts.FindByID(context.Background(), rbac.RoleWorker, order.PlacedBy)
	require.NoError(t, err)
	assert.Contains(t, acc.Orders, order.ID)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture(t, 2)

	_, err := f.svc.PlaceOrder(context.Background(), f.worker, models.OrderInput{
		ProductID:    f.product.ID.Hex(),
		Quantity:     3,
		CustomerName: "Acme Corp",
	})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	// Rejection leaves stock untouched.
	assert.EqualValues(t, 2, f.stock(t))
}

func TestPlaceOrderExactStock(t *testing.T) {
	f := newOrderFixture(t, 3)

	_, err := f.svc.PlaceOrder(context.Background(), f.worker, models.OrderInput{
		ProductID:    f.product.ID.Hex(),
		Quantity:     3,
		CustomerName: "Acme Corp",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, f.stock(t))
}

func TestPlaceOrderRejectsNonPositiveQuantity(t *testing.T) {
	f := newOrderFixture(t, 10)
	ctx := context.Background()

	for _, qty := range []int64{0, -5} {
		_, err := f.svc.PlaceOrder(ctx, f.worker, models.OrderInput{
			ProductID:    f.product.ID.Hex(),
			Quantity:     qty,
			CustomerName: "Acme Corp",
		})
		assert.ErrorIs(t, err, models.ErrValidation, "quantity %d", qty)
	}

	// A negative quantity must not inflate stock through the decrement,
	// and nothing may be recorded.
	assert.EqualValues(t, 10, f.stock(t))
	page, err := f.svc.ListAllOrders(ctx, 1, 8, "")
	require.NoError(t, err)
	assert.Empty(t, page.Orders)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	f := newOrderFixture(t, 5)

	_, err := f.svc.PlaceOrder(context.Background(), f.worker, models.OrderInput{
		ProductID:    primitive.NewObjectID().Hex(),
		Quantity:     1,
		CustomerName: "Acme Corp",
	})
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestPlaceOrderBadProductID(t *testing.T) {
	f := newOrderFixture(t, 5)

	_, err := f.svc.PlaceOrder(context.Background(), f.worker, models.OrderInput{
		ProductID:    "garbage",
		Quantity:     1,
		CustomerName: "Acme Corp",
	})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestPlaceOrderInsertFailureRestoresStock(t *testing.T) {
	f := newOrderFixture(t, 10)
	f.orders.failCreate = true

	_, err := f.svc.PlaceOrder(context.Background(), f.worker, models.OrderInput{
		ProductID:    f.product.ID.Hex(),
		Quantity:     4,
		CustomerName: "Acme Corp",
	})
	assert.ErrorIs(t, err, models.ErrInternal)

	// Compensation put the deducted stock back.
	assert.EqualValues(t, 10, f.stock(t))
}

func TestPlaceOrderConcurrentNeverOversells(t *testing.T) {
	const stock = 5
	const attempts = 20

	f := newOrderFixture(t, stock)

	var succeeded, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.PlaceOrder(context.Background(), f.worker, models.OrderInput{
				ProductID:    f.product.ID.Hex(),
				Quantity:     1,
				CustomerName: "Acme Corp",
			})
			if err == nil {
				succeeded.Add(1)
			} else {
				assert.ErrorIs(t, err, models.ErrInsufficientStock)
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, stock, succeeded.Load())
	assert.EqualValues(t, attempts-stock, rejected.Load())
	assert.EqualValues(t, 0, f.stock(t))
}

func TestListMyOrdersScopedToCaller(t *testing.T) {
	f := newOrderFixture(t, 100)
	ctx := context.Background()

	other := &models.Account{Username: "sunil", Password: "x"}
	require.NoError(t, f.accounts.Create(ctx, rbac.RoleWorker, other))

	for i := 0; i < 3; i++ {
		_, err := f.svc.PlaceOrder(ctx, f.worker, models.OrderInput{
			ProductID: f.product.ID.Hex(), Quantity: 1, CustomerName: "Mine",
		})
		require.NoError(t, err)
	}
	_, err := f.svc.PlaceOrder(ctx, other.Principal(), models.OrderInput{
		ProductID: f.product.ID.Hex(), Quantity: 1, CustomerName: "Theirs",
	})
	require.NoError(t, err)

	page, err := f.svc.ListMyOrders(ctx, f.worker, 1, 8, "")
	require.NoError(t, err)
	assert.Len(t, page.Orders, 3)
	for _, o := range page.Orders {
		assert.Equal(t, "Mine", o.CustomerName)
		assert.Equal(t, "Steel Bolt", o.ProductName)
		assert.Equal(t, "ravi", o.PlacedByName)
	}
}

func TestListAllOrdersEnrichedAndSearchable(t *testing.T) {
	f := newOrderFixture(t, 100)
	ctx := context.Background()

	names := []string{"Acme Corp", "Globex", "Acme Labs"}
	for _, n := range names {
		_, err := f.svc.PlaceOrder(ctx, f.worker, models.OrderInput{
			ProductID: f.product.ID.Hex(), Quantity: 1, CustomerName: n,
		})
		require.NoError(t, err)
	}

	page, err := f.svc.ListAllOrders(ctx, 1, 8, "")
	require.NoError(t, err)
	assert.Len(t, page.Orders, 3)
	// Newest first.
	assert.Equal(t, "Acme Labs", page.Orders[0].CustomerName)

	filtered, err := f.svc.ListAllOrders(ctx, 1, 8, "acme")
	require.NoError(t, err)
	assert.Len(t, filtered.Orders, 2)
	assert.EqualValues(t, 2, filtered.Pagination.TotalCount)
}

func TestListAllOrdersDanglingProduct(t *testing.T) {
	f := newOrderFixture(t, 10)
	ctx := context.Background()

	_, err := f.svc.PlaceOrder(ctx, f.worker, models.OrderInput{
		ProductID: f.product.ID.Hex(), Quantity: 1, CustomerName: "Acme Corp",
	})
	require.NoError(t, err)

	// Deleting the product must not break order listing.
	require.NoError(t, f.products.Delete(ctx, f.product.ID))

	page, err := f.svc.ListAllOrders(ctx, 1, 8, "")
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Empty(t, page.Orders[0].ProductName)
	assert.Equal(t, "ravi", page.Orders[0].PlacedByName)
}

func TestUpdateDeliveryIdempotent(t *testing.T) {
	f := newOrderFixture(t, 10)
	ctx := context.Background()

	order, err := f.svc.PlaceOrder(ctx, f.worker, models.OrderInput{
		ProductID: f.product.ID.Hex(), Quantity: 1, CustomerName: "Acme Corp",
	})
	require.NoError(t, err)
	assert.False(t, order.Delivered)

	got, err := f.svc.UpdateDelivery(ctx, order.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, got.Delivered)

	// Second update is a no-op, not an error.
	got, err = f.svc.UpdateDelivery(ctx, order.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, got.Delivered)
}

func TestUpdateDeliveryUnknownOrder(t *testing.T) {
	f := newOrderFixture(t, 10)

	_, err := f.svc.UpdateDelivery(context.Background(), primitive.NewObjectID().Hex(), true)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestDeleteOrderKeepsStock(t *testing.T) {
	f := newOrderFixture(t, 10)
	ctx := context.Background()

	order, err := f.svc.PlaceOrder(ctx, f.worker, models.OrderInput{
		ProductID: f.product.ID.Hex(), Quantity: 4, CustomerName: "Acme Corp",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 6, f.stock(t))

	require.NoError(t, f.svc.DeleteOrder(ctx, order.ID.Hex()))

	// Deleting the record does not return goods to the shelf.
	assert.EqualValues(t, 6, f.stock(t))

	err = f.svc.DeleteOrder(ctx, order.ID.Hex())
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}
