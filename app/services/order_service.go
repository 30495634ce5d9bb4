package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/app/repositories"
	"github.com/shashiranjanraj/enventory/config"
	"github.com/shashiranjanraj/enventory/pkg/collection"
	"github.com/shashiranjanraj/enventory/pkg/event"
	"github.com/shashiranjanraj/enventory/pkg/logger"
	"github.com/shashiranjanraj/enventory/pkg/metrics"
	"github.com/shashiranjanraj/enventory/pkg/mongodb"
	"github.com/shashiranjanraj/enventory/pkg/queue"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
	"github.com/shashiranjanraj/enventory/pkg/response"
)

// Domain event names fired by the order workflow.
const (
	EventOrderPlaced  = "order.placed"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
	JobLowStockAlert  = "product.low_stock"
)

// LowStockPayload is the queue payload for a low-stock alert.
type LowStockPayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Stock     int64  `json:"stock"`
}

// OrderPage is one page of order listing results.
type OrderPage struct {
	Orders     []models.OrderView  `json:"orders"`
	Pagination response.Pagination `json:"pagination"`
}

// OrderService implements the order workflow. Stock is deducted with a
// single conditional update so two concurrent orders can never oversell;
// if the order insert fails afterwards, the deduction is compensated.
type OrderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	accounts repositories.AccountRepository
}

// NewOrderService builds the service on the given repositories.
func NewOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	accounts repositories.AccountRepository,
) *OrderService {
	return &OrderService{orders: orders, products: products, accounts: accounts}
}

// PlaceOrder deducts stock and records the order on behalf of the caller.
// When Mongo transactions are enabled the deduction and insert commit
// together; otherwise a failed insert triggers a stock restore.
func (s *OrderService) PlaceOrder(ctx context.Context, caller rbac.Principal, in models.OrderInput) (*models.Order, error) {
	// Guarded here, not only at the HTTP layer: a non-positive quantity
	// would turn the conditional decrement into a stock increase.
	if in.Quantity < 1 {
		return nil, fmt.Errorf("quantity %d must be at least 1: %w", in.Quantity, models.ErrValidation)
	}

	productID, err := primitive.ObjectIDFromHex(in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product id %q: %w", in.ProductID, models.ErrValidation)
	}
	callerID, err := primitive.ObjectIDFromHex(caller.ID)
	if err != nil {
		return nil, fmt.Errorf("caller id: %w", models.ErrValidation)
	}

	// Price snapshot; the order keeps this price even if the product
	// changes later.
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ProductID:       productID,
		PlacedBy:        callerID,
		Quantity:        in.Quantity,
		UnitPrice:       product.Price,
		TotalPrice:      product.Price * float64(in.Quantity),
		CustomerName:    in.CustomerName,
		CustomerAddress: in.CustomerAddress,
		Contact:         in.Contact,
		COD:             in.COD,
		Description:     in.Description,
	}

	err = mongodb.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.products.DecrementStock(ctx, productID, in.Quantity); err != nil {
			return err
		}
		if err := s.orders.Create(ctx, order); err != nil {
			// Compensate the deduction; without this a lost insert
			// would leak stock.
			if rerr := s.products.RestoreStock(ctx, productID, in.Quantity); rerr != nil {
				logger.WithCtx(ctx).Error("stock restore failed after insert failure",
					"product", productID.Hex(), "qty", in.Quantity, "error", rerr.Error())
			}
			return fmt.Errorf("%w: %v", models.ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientStock) {
			metrics.StockRejection()
		}
		return nil, err
	}

	// Best effort: append to the worker's order history. Admins have no
	// history document, which is fine.
	if err := s.accounts.AppendOrder(ctx, callerID, order.ID); err != nil {
		logger.WithCtx(ctx).Warn("order history append failed",
			"worker", caller.Username, "order", order.ID.Hex(), "error", err.Error())
	}

	metrics.OrderPlaced()
	event.FireAsync(context.WithoutCancel(ctx), EventOrderPlaced, order)

	remaining := product.Stock - in.Quantity
	if threshold := int64(config.LowStockLevel()); remaining <= threshold {
		payload := LowStockPayload{ProductID: productID.Hex(), Name: product.Name, Stock: remaining}
		if err := queue.Dispatch(ctx, JobLowStockAlert, payload); err != nil {
			logger.WithCtx(ctx).Warn("low stock alert dispatch failed",
				"product", product.Name, "error", err.Error())
		}
	}

	logger.WithCtx(ctx).Info("order placed",
		"order", order.ID.Hex(), "product", product.Name,
		"qty", in.Quantity, "by", caller.Username)
	return order, nil
}

// enrich resolves product and account names for a slice of orders.
func (s *OrderService) enrich(ctx context.Context, orders []models.Order) []models.OrderView {
	productIDs := collection.Map(orders, func(o models.Order) primitive.ObjectID { return o.ProductID })
	placerIDs := collection.Map(orders, func(o models.Order) primitive.ObjectID { return o.PlacedBy })

	productByID := map[primitive.ObjectID]models.Product{}
	if ps, err := s.products.FindByIDs(ctx, productIDs); err == nil {
		productByID = collection.KeyBy(ps, func(p models.Product) primitive.ObjectID { return p.ID })
	}

	nameByID := map[primitive.ObjectID]string{}
	for _, role := range []rbac.Role{rbac.RoleWorker, rbac.RoleAdmin} {
		if accs, err := s.accounts.FindByIDs(ctx, role, placerIDs); err == nil {
			for _, a := range accs {
				if _, seen := nameByID[a.ID]; !seen {
					nameByID[a.ID] = a.Username
				}
			}
		}
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		v := models.OrderView{Order: o}
		// Dangling references render with empty names.
		if p, ok := productByID[o.ProductID]; ok {
			v.ProductName = p.Name
			v.ProductSize = p.Size
			v.ProductColor = p.Color
			v.ProductImage = p.ImageURL
		}
		v.PlacedByName = nameByID[o.PlacedBy]
		views = append(views, v)
	}
	return views
}

// ListMyOrders pages through the caller's own orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, caller rbac.Principal, page, limit int, search string) (*OrderPage, error) {
	callerID, err := primitive.ObjectIDFromHex(caller.ID)
	if err != nil {
		return nil, fmt.Errorf("caller id: %w", models.ErrValidation)
	}

	page, limit = response.Coerce(page, limit)
	orders, total, err := s.orders.ListByPlacer(ctx, callerID, int64(page), int64(limit), search)
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Orders:     s.enrich(ctx, orders),
		Pagination: response.NewPagination(page, limit, total),
	}, nil
}

// ListAllOrders pages through every order; admin only, enforced at the
// route level.
func (s *OrderService) ListAllOrders(ctx context.Context, page, limit int, search string) (*OrderPage, error) {
	page, limit = response.Coerce(page, limit)
	orders, total, err := s.orders.ListAll(ctx, int64(page), int64(limit), search)
	if err != nil {
		return nil, err
	}

	return &OrderPage{
		Orders:     s.enrich(ctx, orders),
		Pagination: response.NewPagination(page, limit, total),
	}, nil
}

// UpdateDelivery sets the delivered flag. Idempotent.
func (s *OrderService) UpdateDelivery(ctx context.Context, idHex string, delivered bool) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, fmt.Errorf("order id %q: %w", idHex, models.ErrValidation)
	}

	order, err := s.orders.SetDelivered(ctx, id, delivered)
	if err != nil {
		return nil, err
	}

	event.FireAsync(context.WithoutCancel(ctx), EventOrderUpdated, order)
	logger.WithCtx(ctx).Info("order delivery updated", "order", idHex, "delivered", delivered)
	return order, nil
}

// DeleteOrder removes an order record. Stock is never restored: the goods
// already left the shelf.
func (s *OrderService) DeleteOrder(ctx context.Context, idHex string) error {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return fmt.Errorf("order id %q: %w", idHex, models.ErrValidation)
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}

	event.FireAsync(context.WithoutCancel(ctx), EventOrderDeleted, map[string]string{"id": idHex})
	logger.WithCtx(ctx).Info("order deleted", "order", idHex)
	return nil
}
