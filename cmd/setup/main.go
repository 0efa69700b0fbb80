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

	"go.uber.org/zap"
)

func main() {
	plansFile := flag.String("plans", "plans.yaml", "path to the investment plan seed file")
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

	plans, err := common.LoadPlanConfig(*plansFile)
	if err != nil {
		logger.Fatal("Failed to load plan seed file", zap.Error(err))
	}

	common.PrintHeader("Seeding investment plans", common.DefaultWidth)

	seeded := 0
	for _, plan := range plans {
		if err := dbService.SeedPlan(ctx, plan); err != nil {
			logger.Error("Failed to seed plan",
				zap.String("plan_id", plan.Id),
				zap.Error(err))
			continue
		}

		limit := "open"
		if plan.MaxInvestmentLimit != nil {
			limit = plan.MaxInvestmentLimit.String()
		}
		fmt.Printf("  %-24s %-16s min %10s  cap %10s  %s%%/month\n",
			plan.Id, plan.Category, plan.MinInvestment.String(), limit, plan.MonthlyReturnRate.String())
		seeded++
	}

	common.PrintFooter(fmt.Sprintf("Seeded %d of %d plans", seeded, len(plans)), common.DefaultWidth)
}
