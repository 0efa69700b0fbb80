package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"grao-wallet-go/internal/models"
)

// PlanConfig is one investable product in the seed file.
type PlanConfig struct {
	Id                 string  `yaml:"id"`
	Name               string  `yaml:"name"`
	Category           string  `yaml:"category"`
	MinInvestment      string  `yaml:"minInvestment"`
	MaxInvestmentLimit *string `yaml:"maxInvestmentLimit"`
	MonthlyReturnRate  string  `yaml:"monthlyReturnRate"`
	DurationMonths     int     `yaml:"durationMonths"`
	RiskLevel          string  `yaml:"riskLevel"`
	Active             *bool   `yaml:"active"`
}

type PlansConfig struct {
	Plans []PlanConfig `yaml:"plans"`
}

// LoadPlanConfig reads the plan seed file and converts it into plan models
// ready for SeedPlan. Amounts are kept as strings in yaml to avoid float
// rounding on money values.
func LoadPlanConfig(plansFile string) ([]models.InvestmentPlan, error) {
	var plansPath string
	if filepath.IsAbs(plansFile) {
		plansPath = plansFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		plansPath = filepath.Join(wd, plansFile)
	}

	data, err := os.ReadFile(plansPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", plansFile, err)
	}

	var config PlansConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", plansFile, err)
	}

	plans := make([]models.InvestmentPlan, 0, len(config.Plans))
	for i, entry := range config.Plans {
		if entry.Id == "" {
			return nil, fmt.Errorf("plan at index %d missing id", i)
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("plan at index %d missing name", i)
		}

		minInvestment, err := decimal.NewFromString(entry.MinInvestment)
		if err != nil {
			return nil, fmt.Errorf("plan %s: invalid minInvestment: %w", entry.Id, err)
		}

		returnRate, err := decimal.NewFromString(entry.MonthlyReturnRate)
		if err != nil {
			return nil, fmt.Errorf("plan %s: invalid monthlyReturnRate: %w", entry.Id, err)
		}

		var maxLimit *decimal.Decimal
		if entry.MaxInvestmentLimit != nil {
			parsed, err := decimal.NewFromString(*entry.MaxInvestmentLimit)
			if err != nil {
				return nil, fmt.Errorf("plan %s: invalid maxInvestmentLimit: %w", entry.Id, err)
			}
			maxLimit = &parsed
		}

		active := true
		if entry.Active != nil {
			active = *entry.Active
		}

		plans = append(plans, models.InvestmentPlan{
			Id:                 entry.Id,
			Name:               entry.Name,
			Category:           entry.Category,
			MinInvestment:      minInvestment,
			MaxInvestmentLimit: maxLimit,
			MonthlyReturnRate:  returnRate,
			DurationMonths:     entry.DurationMonths,
			RiskLevel:          entry.RiskLevel,
			IsActive:           active,
		})
	}

	return plans, nil
}
