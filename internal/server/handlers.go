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
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grao-wallet-go/internal/api"
	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"
)

const maxWebhookBody = 1 << 20

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.ledger.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleRegister(c *gin.Context) {
	var request models.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.ledger.Register(c.Request.Context(), &request)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleLogin(c *gin.Context) {
	var request models.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.ledger.Login(c.Request.Context(), &request)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleWallet(c *gin.Context) {
	summary, err := s.ledger.GetWallet(c.Request.Context(), currentUserId(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleWalletHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	history, err := s.ledger.GetHistory(c.Request.Context(), currentUserId(c), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) handleDeposit(c *gin.Context) {
	var request models.DepositRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.ledger.InitiateDeposit(c.Request.Context(), currentUserId(c), &request)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleDepositStatus(c *gin.Context) {
	externalId := c.Query("externalId")
	if externalId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "externalId is required"})
		return
	}

	result, err := s.ledger.ResolveDepositStatus(c.Request.Context(), currentUserId(c), externalId)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleWithdraw(c *gin.Context) {
	var request models.WithdrawRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.ledger.RequestWithdrawal(c.Request.Context(), currentUserId(c), &request)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleListPlans(c *gin.Context) {
	plans, err := s.ledger.ListPlans(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (s *Server) handleInvest(c *gin.Context) {
	var request models.InvestRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.ledger.PlaceInvestment(c.Request.Context(), currentUserId(c), &request)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleReferrals(c *gin.Context) {
	referrals, err := s.ledger.ListReferrals(c.Request.Context(), currentUserId(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": referrals})
}

func (s *Server) handleKycStatus(c *gin.Context) {
	status, err := s.ledger.GetKycStatus(c.Request.Context(), currentUserId(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (s *Server) handleKycSubmit(c *gin.Context) {
	if err := s.ledger.SubmitKyc(c.Request.Context(), currentUserId(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.KycPending})
}

func (s *Server) handleKycReview(c *gin.Context) {
	var request struct {
		UserId string `json:"userId"`
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.ledger.ReviewKyc(c.Request.Context(), request.UserId, request.Status); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": request.Status})
}

func (s *Server) handleRecordReturn(c *gin.Context) {
	var record models.InvestmentReturn
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.ledger.RecordReturn(c.Request.Context(), record); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

// handleWebhook acknowledges every provider callback with 200. The ok flag
// is diagnostic only; a non-2xx would make the provider retry payloads we
// can never process.
func (s *Server) handleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		zap.L().Warn("unreadable webhook body", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}

	ok := s.ledger.HandleWebhook(c.Request.Context(), body)
	c.JSON(http.StatusOK, gin.H{"ok": ok})
}

// writeError maps service errors onto HTTP statuses. Sentinels from the
// store are client errors; gateway failures are 502; anything else is a
// masked 500.
func (s *Server) writeError(c *gin.Context, err error) {
	var gatewayErr *api.GatewayError

	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrPlanNotFound),
		errors.Is(err, store.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, store.ErrInsufficientBalance),
		errors.Is(err, store.ErrBelowMinimum),
		errors.Is(err, store.ErrPlanInactive),
		errors.Is(err, store.ErrPlanCapExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.Is(err, store.ErrKycNotApproved):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, store.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, store.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": "please retry"})

	case errors.Is(err, api.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, api.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.As(err, &gatewayErr):
		zap.L().Error("gateway failure", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})

	default:
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
