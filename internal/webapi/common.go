package webapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vietbooks/bookstore/internal/domain"
)

type apiResponse struct {
	Code   string      `json:"code"`
	Msg    string      `json:"msg,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Detail interface{} `json:"detail,omitempty"`
}

type pagedResponse struct {
	Code     string      `json:"code"`
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, apiResponse{Code: "OK", Data: data})
}

func fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	return c.JSON(status, apiResponse{Code: code, Msg: msg, Detail: detail})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedResponse{
		Code:     "OK",
		Data:     rows,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize = 10
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 100 {
		pageSize = ps
	}
	return page, pageSize
}

func parseID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// failFromError maps core error types onto HTTP responses. Business failures
// keep enough structure for field-level UI feedback.
func failFromError(c echo.Context, err error) error {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Error(), validationErr.Violations)
	}

	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", stockErr.Error(), map[string]interface{}{
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	}

	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return fail(c, http.StatusConflict, "INVALID_TRANSITION", transitionErr.Error(), nil)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "The requested record was not found", nil)
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Access denied", nil)
	case errors.Is(err, domain.ErrEmptyCart):
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Your cart is empty", nil)
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fail(c, http.StatusBadRequest, "INVALID_QUANTITY", err.Error(), nil)
	case errors.Is(err, domain.ErrReorderFailed):
		return fail(c, http.StatusConflict, "REORDER_FAILED", err.Error(), nil)
	}

	return fail(c, http.StatusInternalServerError, "TRANSIENT_FAILURE", "An unexpected error occurred, please retry", nil)
}
