package wizard

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
)

var ErrUnknownPricing = errors.New("no pricing for provider and instance type")

// Monthly USD price of one node by provider and instance type.
var instancePrices = map[models.Provider]map[string]int64{
	models.ProviderAWS:          {"small": 35, "medium": 70, "large": 140, "xlarge": 280},
	models.ProviderGCP:          {"small": 32, "medium": 65, "large": 130, "xlarge": 260},
	models.ProviderAzure:        {"small": 38, "medium": 75, "large": 150, "xlarge": 300},
	models.ProviderDigitalOcean: {"small": 24, "medium": 48, "large": 96, "xlarge": 192},
	models.ProviderLocal:        {"small": 0, "medium": 0, "large": 0, "xlarge": 0},
}

var (
	storagePerBlock = decimal.NewFromInt(10)
	monitoringFlat  = decimal.NewFromInt(25)
)

const storageBlockGB = 100

// CostEstimate is a monthly estimate in USD; amounts serialize as strings.
type CostEstimate struct {
	Provider        models.Provider `json:"provider"`
	InstanceType    string          `json:"instanceType"`
	DiskSizeGB      int             `json:"diskSizeGB"`
	Nodes           int             `json:"nodes"`
	InstancePerNode decimal.Decimal `json:"instancePerNode"`
	StoragePerNode  decimal.Decimal `json:"storagePerNode"`
	Monitoring      decimal.Decimal `json:"monitoring"`
	Compute         decimal.Decimal `json:"compute"`
	Storage         decimal.Decimal `json:"storage"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
}

// EstimateMonthlyCost prices nodes × (instance + storage) plus flat
// monitoring. Storage is billed per started 100 GB block.
func EstimateMonthlyCost(provider models.Provider, instanceType string, diskSizeGB, nodes int) (CostEstimate, error) {
	prices, ok := instancePrices[provider]
	if !ok {
		return CostEstimate{}, fmt.Errorf("%w: provider %q", ErrUnknownPricing, provider)
	}
	price, ok := prices[instanceType]
	if !ok {
		return CostEstimate{}, fmt.Errorf("%w: instance type %q", ErrUnknownPricing, instanceType)
	}
	if diskSizeGB < 0 || nodes < 0 {
		return CostEstimate{}, fmt.Errorf("%w: disk size and node count must not be negative", ErrInvalidValue)
	}

	blocks := (diskSizeGB + storageBlockGB - 1) / storageBlockGB
	n := decimal.NewFromInt(int64(nodes))
	instance := decimal.NewFromInt(price)
	storage := storagePerBlock.Mul(decimal.NewFromInt(int64(blocks)))

	est := CostEstimate{
		Provider:        provider,
		InstanceType:    instanceType,
		DiskSizeGB:      diskSizeGB,
		Nodes:           nodes,
		InstancePerNode: instance,
		StoragePerNode:  storage,
		Monitoring:      monitoringFlat,
		Compute:         instance.Mul(n),
		Storage:         storage.Mul(n),
		Currency:        "USD",
	}
	est.Total = est.Compute.Add(est.Storage).Add(est.Monitoring)
	return est, nil
}

// EstimateConfig prices a wizard config.
func EstimateConfig(cfg models.NetworkConfig) (CostEstimate, error) {
	d := cfg.Deployment
	return EstimateMonthlyCost(d.Provider, d.InstanceType, d.DiskSizeGB, cfg.Validators.ValidatorCount)
}
