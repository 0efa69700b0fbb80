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
	"flag"
	"fmt"

	"grao-wallet-go/internal/common"
	"grao-wallet-go/internal/config"
	"grao-wallet-go/internal/models"

	"go.uber.org/zap"
)

func printPosition(item models.PortfolioItem, isLast bool) {
	symbol := common.BoxPrefix(isLast)
	fmt.Printf("%s %-28s %12s  (%s%% of wallet, %s%%/month)\n",
		symbol,
		item.PlanName,
		item.Amount.StringFixed(2),
		item.SharePct.StringFixed(1),
		item.MonthlyReturnPct.StringFixed(2))

	for i, dividend := range item.Dividends {
		detailSymbol := common.BoxDetailPrefix(isLast && i == len(item.Dividends)-1)
		fmt.Printf("%s   %s  +%s (%s)\n",
			detailSymbol,
			dividend.Date.Format("2006-01-02"),
			dividend.Value.StringFixed(2),
			dividend.Type)
	}
}

func printWallet(summary *models.WalletSummary) {
	fmt.Printf("\n┌─ Wallet: %s\n", summary.Name)
	fmt.Printf("│  ID: %s\n", summary.UserId)
	fmt.Printf("│  Balance: %s\n", summary.Balance.StringFixed(2))
	fmt.Printf("│  Invested: %s   Returns: %s\n",
		summary.TotalInvested.StringFixed(2), summary.TotalReturns.StringFixed(2))
	fmt.Printf("│  KYC: %s\n", summary.KycStatus)
	common.PrintBoxSeparator(common.DefaultWidth)

	if len(summary.Portfolio) == 0 {
		fmt.Println("└  no positions")
		return
	}

	for i, item := range summary.Portfolio {
		printPosition(item, i == len(summary.Portfolio)-1)
	}
}

func main() {
	userId := flag.String("user", "", "user id to report")
	email := flag.String("email", "", "look the user up by email instead of id")
	flag.Parse()

	logger, cleanup := common.InitializeLogger()
	defer cleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	resolvedId := *userId
	if resolvedId == "" && *email != "" {
		user, err := dbService.GetUserByEmail(ctx, *email)
		if err != nil {
			logger.Fatal("Failed to find user by email", zap.String("email", *email), zap.Error(err))
		}
		resolvedId = user.Id
	}

	if resolvedId == "" {
		logger.Fatal("Either -user or -email is required")
	}

	common.PrintHeader("Wallet report", common.DefaultWidth)

	summary, err := dbService.GetWalletSummary(ctx, resolvedId)
	if err != nil {
		logger.Fatal("Failed to load wallet summary",
			zap.String("user_id", resolvedId),
			zap.Error(err))
	}

	printWallet(summary)
	common.PrintFooter("Report complete", common.DefaultWidth)
}
