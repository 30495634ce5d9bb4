// Package jobs holds the background job handlers dispatched through the
// queue.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shashiranjanraj/enventory/app/repositories"
	"github.com/shashiranjanraj/enventory/app/services"
	"github.com/shashiranjanraj/enventory/config"
	"github.com/shashiranjanraj/enventory/pkg/logger"
	"github.com/shashiranjanraj/enventory/pkg/metrics"
	"github.com/shashiranjanraj/enventory/pkg/ws"
)

// LowStockAlert notifies connected dashboards when a placement drains a
// product to the configured threshold, and refreshes the low-stock gauge.
type LowStockAlert struct {
	Products repositories.ProductRepository
	Hub      *ws.Hub
}

func (j *LowStockAlert) Name() string { return services.JobLowStockAlert }

func (j *LowStockAlert) Handle(ctx context.Context, payload json.RawMessage) error {
	var p services.LowStockPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("low stock payload: %w", err)
	}

	logger.Warn("product low on stock",
		"product", p.Name, "id", p.ProductID, "stock", p.Stock)

	if j.Hub != nil {
		j.Hub.Broadcast("product.low_stock", p)
	}

	if j.Products != nil {
		n, err := j.Products.CountLowStock(ctx, int64(config.LowStockLevel()))
		if err != nil {
			return err
		}
		metrics.SetLowStockProducts(int(n))
	}
	return nil
}
