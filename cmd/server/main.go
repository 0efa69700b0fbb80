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

package main

import (
	"context"
	"os/signal"
	"syscall"

	"grao-wallet-go/internal/auth"
	"grao-wallet-go/internal/common"
	"grao-wallet-go/internal/config"
	"grao-wallet-go/internal/server"

	"go.uber.org/zap"
)

func main() {
	logger, cleanup := common.InitializeLogger()
	defer cleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	tokens := auth.NewTokenIssuer(cfg.Auth.JwtSecret, cfg.Auth.TokenTtl)
	httpServer := server.NewServer(services.Ledger, tokens, cfg.Server)

	if err := httpServer.Run(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
