package webapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type addCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// getCart returns the full cart page view: lines newest-first plus the quote.
func (s *Server) getCart(c echo.Context) error {
	snap, err := s.carts.Snapshot(c.Request().Context(), currentUserID(c))
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, snap)
}

// getCartMini returns only the navigation badge numbers.
func (s *Server) getCartMini(c echo.Context) error {
	totals, err := s.carts.Totals(c.Request().Context(), currentUserID(c))
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, totals)
}

func (s *Server) addCartItem(c echo.Context) error {
	var req addCartItemRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
	}
	totals, err := s.carts.AddItem(c.Request().Context(), currentUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, totals)
}

func (s *Server) updateCartItem(c echo.Context) error {
	lineID, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "BAD_REQUEST", "invalid cart line id", nil)
	}
	var req updateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
	}
	result, err := s.carts.UpdateQuantity(c.Request().Context(), currentUserID(c), lineID, req.Quantity)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, result)
}

func (s *Server) removeCartItem(c echo.Context) error {
	lineID, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "BAD_REQUEST", "invalid cart line id", nil)
	}
	totals, err := s.carts.RemoveItem(c.Request().Context(), currentUserID(c), lineID)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, totals)
}

func (s *Server) clearCart(c echo.Context) error {
	removed, err := s.carts.Clear(c.Request().Context(), currentUserID(c))
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, map[string]int64{"removed": removed})
}
