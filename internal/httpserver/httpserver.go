package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tickerduel/stockpick_backend/config"
	controller "github.com/tickerduel/stockpick_backend/internal/transport/http"
	"github.com/tickerduel/stockpick_backend/internal/transport/http/middleware"
)

type Server struct {
	cfg    *config.Config
	server *http.Server
}

func New(cfg *config.Config, ctrl *controller.Controller) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Logger(), cors.Default())

	registerRoutes(engine, ctrl)

	return &Server{
		cfg: cfg,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:      engine,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}
}

func registerRoutes(engine *gin.Engine, ctrl *controller.Controller) {
	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.POST("/users", ctrl.Register)
	engine.POST("/users/login", ctrl.Login)
	engine.POST("/users/logout", ctrl.Logout)
	engine.GET("/users/verify", ctrl.VerifyEmail)
	engine.GET("/users/:id", ctrl.GetUser)

	engine.GET("/competitions", ctrl.GetCompetitions)
	engine.POST("/competitions", ctrl.AuthRequired(), ctrl.CreateCompetition)
	engine.GET("/competitions/:id/leaderboard", ctrl.GetLeaderboard)
	engine.GET("/competitions/:id/leaderboard/export", ctrl.ExportLeaderboard)

	engine.GET("/portfolios", ctrl.ListPortfolios)
	engine.POST("/portfolios", ctrl.AuthRequired(), ctrl.CreatePortfolio)
	engine.GET("/portfolios/:id", ctrl.AuthOptional(), ctrl.GetPortfolio)
	engine.POST("/portfolios/:id/items", ctrl.AuthRequired(), ctrl.AddPortfolioItem)
	engine.POST("/portfolios/:id/refresh", ctrl.AuthOptional(), ctrl.RefreshPortfolio)

	engine.GET("/stocks/search", ctrl.SearchStocks)
	engine.GET("/stocks/:symbol/price", ctrl.GetStockPrice)
}

func (s *Server) Start() {
	go func() {
		slog.Info("http server starting", slog.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("http server failed: %v", err))
		}
	}()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown failed", slog.String("err", err.Error()))
		return
	}
	slog.Info("http server stopped")
}
