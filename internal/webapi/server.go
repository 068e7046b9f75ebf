package webapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/vietbooks/bookstore/config"
	"github.com/vietbooks/bookstore/internal/cart"
	"github.com/vietbooks/bookstore/internal/order"
	"go.uber.org/zap"
)

// Server hosts the storefront JSON API.
type Server struct {
	e      *echo.Echo
	cfg    *config.AppConfig
	carts  *cart.Service
	orders *order.Service
	query  *order.Query
}

func NewServer(cfg *config.AppConfig, carts *cart.Service, orders *order.Service, query *order.Query) *Server {
	s := &Server{
		cfg:    cfg,
		carts:  carts,
		orders: orders,
		query:  query,
	}
	s.e = echo.New()
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(middleware.Recover())
	s.e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
	s.e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if he, ok := err.(*echo.HTTPError); ok {
			_ = fail(c, he.Code, "HTTP_ERROR", fmt.Sprintf("%v", he.Message), nil)
			return
		}
		_ = failFromError(c, err)
	}
	s.initRouter()
	return s
}

func (s *Server) initRouter() {
	s.e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "time": time.Now()})
	})

	api := s.e.Group("/api", jwtMiddleware(s.cfg.Web.JwtSecret))

	api.GET("/cart", s.getCart)
	api.GET("/cart/mini", s.getCartMini)
	api.POST("/cart/items", s.addCartItem)
	api.PUT("/cart/items/:id", s.updateCartItem)
	api.DELETE("/cart/items/:id", s.removeCartItem)
	api.DELETE("/cart", s.clearCart)

	api.POST("/orders", s.placeOrder)
	api.GET("/orders", s.listOrders)
	api.GET("/orders/export", s.exportOrders)
	api.GET("/orders/:id", s.getOrderDetails)
	api.POST("/orders/:id/cancel", s.cancelOrder)
	api.POST("/orders/:id/reorder", s.reorder)
	api.PUT("/orders/:id/status", s.updateOrderStatus)
}

// Echo exposes the underlying engine for tests.
func (s *Server) Echo() *echo.Echo {
	return s.e
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	zap.L().Info("starting web server", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
