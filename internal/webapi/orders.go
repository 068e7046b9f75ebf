package webapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/vietbooks/bookstore/internal/domain"
	"github.com/vietbooks/bookstore/internal/order"
)

func (s *Server) placeOrder(c echo.Context) error {
	var in order.PlaceOrderInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
	}
	result, err := s.orders.PlaceOrder(c.Request().Context(), currentUserID(c), in)
	if err != nil {
		return failFromError(c, err)
	}
	return c.JSON(http.StatusCreated, apiResponse{Code: "OK", Data: result})
}

func parseOrderFilter(c echo.Context) order.Filter {
	filter := order.Filter{Status: domain.OrderStatus(c.QueryParam("status"))}
	if raw := c.QueryParam("from"); raw != "" {
		if t, err := dateparse.ParseLocal(raw); err == nil {
			filter.From = t
		}
	}
	if raw := c.QueryParam("to"); raw != "" {
		if t, err := dateparse.ParseLocal(raw); err == nil {
			filter.To = t
		}
	}
	return filter
}

func (s *Server) listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	result, err := s.query.ListOrders(c.Request().Context(), currentUserID(c), parseOrderFilter(c), page, pageSize)
	if err != nil {
		return failFromError(c, err)
	}
	return paged(c, result.Orders, result.TotalCount, result.Page, result.PageSize)
}

func (s *Server) getOrderDetails(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
	}
	details, err := s.query.GetOrderDetails(c.Request().Context(), currentUserID(c), orderID)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, details)
}

func (s *Server) cancelOrder(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
	}
	if err := s.orders.Cancel(c.Request().Context(), currentUserID(c), orderID); err != nil {
		return failFromError(c, err)
	}
	return ok(c, map[string]string{"status": string(domain.OrderStatusCancelled)})
}

func (s *Server) reorder(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
	}
	result, err := s.orders.Reorder(c.Request().Context(), currentUserID(c), orderID)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, result)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) updateOrderStatus(c echo.Context) error {
	orderID, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
	}
	if err := s.orders.UpdateStatus(c.Request().Context(), orderID, domain.OrderStatus(req.Status)); err != nil {
		return failFromError(c, err)
	}
	return ok(c, map[string]string{"status": req.Status})
}

// exportOrders streams the caller's full order history as a CSV download.
func (s *Server) exportOrders(c echo.Context) error {
	summaries, err := s.query.ExportOrders(c.Request().Context(), currentUserID(c))
	if err != nil {
		return failFromError(c, err)
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(summaries, c.Response())
}
