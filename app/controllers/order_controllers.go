package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/enventory/app/models"
	"github.com/shashiranjanraj/enventory/app/services"
	"github.com/shashiranjanraj/enventory/pkg/bind"
	"github.com/shashiranjanraj/enventory/pkg/rbac"
	"github.com/shashiranjanraj/enventory/pkg/response"
	"github.com/shashiranjanraj/enventory/pkg/ws"
)

// OrderController handles the order workflow routes and the live admin
// order stream.
type OrderController struct {
	Orders *services.OrderService
	Hub    *ws.Hub
}

func NewOrderController(orders *services.OrderService, hub *ws.Hub) *OrderController {
	return &OrderController{Orders: orders, Hub: hub}
}

// AddOrder handles POST /order/addOrder.
func (c *OrderController) AddOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := rbac.FromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var in models.OrderInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.Orders.PlaceOrder(r.Context(), caller, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, map[string]interface{}{"order": order})
}

// MyOrders handles GET /order/my-orders.
func (c *OrderController) MyOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := rbac.FromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	page, limit := response.PageParams(r)
	result, err := c.Orders.ListMyOrders(r.Context(), caller, page, limit, r.URL.Query().Get("search"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, result.Orders, result.Pagination)
}

// AllOrders handles GET /order/allOrders; admin only.
func (c *OrderController) AllOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := response.PageParams(r)
	result, err := c.Orders.ListAllOrders(r.Context(), page, limit, r.URL.Query().Get("search"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Paginated(w, result.Orders, result.Pagination)
}

type updateOrderInput struct {
	Delivered bool `json:"delivered"`
}

// UpdateOrder handles PUT /order/updateOrder/{id}; admin only. Idempotent.
func (c *OrderController) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var in updateOrderInput
	if _, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := c.Orders.UpdateDelivery(r.Context(), chi.URLParam(r, "id"), in.Delivered)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]interface{}{"order": order})
}

// DelOrder handles DELETE /order/delOrder/{id}; admin only. Stock is not
// restored.
func (c *OrderController) DelOrder(w http.ResponseWriter, r *http.Request) {
	if err := c.Orders.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err)
		return
	}
	response.Message(w, "Order deleted")
}

// Stream handles GET /order/stream: upgrades to a websocket that receives
// order.placed / order.updated / order.deleted events; admin only.
func (c *OrderController) Stream(w http.ResponseWriter, r *http.Request) {
	if c.Hub == nil {
		response.Error(w, http.StatusServiceUnavailable, "live stream unavailable")
		return
	}
	c.Hub.Serve(w, r)
}
