/**
 * Copyright 2025-present Grão Investimentos Ltda.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grao-wallet-go/internal/api"
	"grao-wallet-go/internal/auth"
	"grao-wallet-go/internal/models"
)

// Server wires the ledger service onto HTTP routes.
type Server struct {
	ledger *api.LedgerService
	tokens *auth.TokenIssuer
	cfg    models.ServerConfig
	router *gin.Engine
}

func NewServer(ledger *api.LedgerService, tokens *auth.TokenIssuer, cfg models.ServerConfig) *Server {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		ledger: ledger,
		tokens: tokens,
		cfg:    cfg,
		router: gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	root := s.router.Group("/api")

	// Provider callbacks and back-office routes do not carry user tokens.
	root.POST("/webhook", s.handleWebhook)
	root.POST("/kyc/review", s.requireReviewSecret, s.handleKycReview)
	root.POST("/returns", s.requireReviewSecret, s.handleRecordReturn)

	authRoutes := root.Group("/auth")
	authRoutes.POST("/register", s.handleRegister)
	authRoutes.POST("/login", s.handleLogin)

	user := root.Group("/", s.requireUser)
	user.GET("/wallet", s.handleWallet)
	user.GET("/wallet/history", s.handleWalletHistory)
	user.POST("/wallet/deposit", s.handleDeposit)
	user.GET("/wallet/deposit/status", s.handleDepositStatus)
	user.POST("/wallet/withdraw", s.handleWithdraw)
	user.GET("/plans", s.handleListPlans)
	user.POST("/investments", s.handleInvest)
	user.GET("/affiliate/referrals", s.handleReferrals)
	user.GET("/kyc", s.handleKycStatus)
	user.POST("/kyc", s.handleKycSubmit)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then drains within the
// configured shutdown window.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("HTTP server listening", zap.String("port", s.cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	zap.L().Info("Shutting down HTTP server")
	return httpServer.Shutdown(shutdownCtx)
}
