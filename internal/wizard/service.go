package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/repository"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/validation"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/logger"
)

// Service loads a draft, applies one operation and saves it back.
type Service struct {
	drafts   DraftStore
	store    NetworkStore
	deployer *Deployer
	logger   *logger.Logger
	locks    draftLocks
}

func NewService(drafts DraftStore, store NetworkStore, deployer *Deployer, log *logger.Logger) *Service {
	return &Service{drafts: drafts, store: store, deployer: deployer, logger: log}
}

func (s *Service) Deployer() *Deployer {
	return s.deployer
}

func (s *Service) CreateDraft(ctx context.Context, ownerID string) (*Draft, error) {
	d := NewDraft(ownerID, time.Now().UTC())
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return d, nil
}

func (s *Service) GetDraft(ctx context.Context, id string) (*Draft, error) {
	return s.drafts.Get(ctx, id)
}

func (s *Service) DeleteDraft(ctx context.Context, id string) error {
	defer s.locks.lock(id)()
	if _, err := s.drafts.Get(ctx, id); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, id)
}

func (s *Service) mutate(ctx context.Context, id string, fn func(d *Draft) error) (*Draft, error) {
	defer s.locks.lock(id)()
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	d.UpdatedAt = time.Now().UTC()
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return d, nil
}

func (s *Service) SetField(ctx context.Context, id, path string, value interface{}) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error { return d.SetField(path, value) })
}

func (s *Service) SetSlider(ctx context.Context, id, path string, value float64) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error { return d.SetSlider(path, value) })
}

func (s *Service) ToggleCustomValidators(ctx context.Context, id string, on bool) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		d.ToggleCustomValidators(on)
		return nil
	})
}

func (s *Service) AddOrUpdateValidator(ctx context.Context, id string, entry models.ValidatorEntry, index *int) (*Draft, int, error) {
	var at int
	d, err := s.mutate(ctx, id, func(d *Draft) error {
		var err error
		at, err = d.AddOrUpdateValidator(entry, index)
		return err
	})
	return d, at, err
}

func (s *Service) RemoveValidator(ctx context.Context, id string, index int) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error { return d.RemoveValidator(index) })
}

// Validate shows every error of the draft.
func (s *Service) Validate(ctx context.Context, id string) (*Draft, error) {
	return s.mutate(ctx, id, func(d *Draft) error {
		d.ValidateAll()
		return nil
	})
}

func (s *Service) Estimate(ctx context.Context, id string) (CostEstimate, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return CostEstimate{}, err
	}
	return EstimateConfig(d.Config)
}

// Submit turns a confirmed, valid draft into a deploying network and starts
// its simulated deployment. The draft is removed on success.
func (s *Service) Submit(ctx context.Context, id string, confirm bool, userID string) (*models.Network, Progress, error) {
	if !confirm {
		return nil, Progress{}, ErrNotConfirmed
	}
	defer s.locks.lock(id)()
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, Progress{}, err
	}

	if errs := validation.Config(d.Config); !errs.Empty() {
		d.ValidateAll()
		d.UpdatedAt = time.Now().UTC()
		if err := s.drafts.Save(ctx, d); err != nil {
			s.logger.Warn("Failed to save draft errors", "draft_id", id, "error", err)
		}
		return nil, Progress{}, &ValidationError{Errors: errs}
	}

	owner := d.OwnerID
	if owner == "" {
		owner = userID
	}
	network := BuildNetwork(d.Config, owner)
	if err := s.store.CreateNetwork(ctx, network); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Progress{}, &ValidationError{Errors: validation.Errors{
				"basicInfo.chainId": "A network with this chain ID already exists",
			}}
		}
		return nil, Progress{}, fmt.Errorf("failed to create network: %w", err)
	}

	estimate, _ := EstimateConfig(d.Config)
	details, _ := json.Marshal(map[string]interface{}{
		"chainId":        network.ChainID,
		"provider":       d.Config.Deployment.Provider,
		"validatorCount": d.Config.Validators.ValidatorCount,
		"monthlyCost":    estimate.Total.StringFixed(2),
	})
	entry := &models.SystemLog{
		Level:     models.LevelInfo,
		Source:    "wizard",
		Message:   fmt.Sprintf("Network %s submitted for deployment", network.Name),
		Details:   details,
		UserID:    userID,
		NetworkID: network.ID,
	}
	if err := s.store.CreateLog(ctx, entry); err != nil {
		s.logger.Warn("Failed to write submit log", "network_id", network.ID, "error", err)
	}

	if err := s.drafts.Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to delete submitted draft", "draft_id", id, "error", err)
	}

	progress := s.deployer.Start(network.ID)
	s.logger.Info("Network submitted", "network_id", network.ID, "chain_id", network.ChainID)
	return network, progress, nil
}

var instanceResources = map[string]models.Resources{
	"small":  {CPU: 2, MemoryGB: 4},
	"medium": {CPU: 4, MemoryGB: 8},
	"large":  {CPU: 8, MemoryGB: 16},
	"xlarge": {CPU: 16, MemoryGB: 32},
}

// BuildNetwork maps a wizard config onto a network record in the deploying
// state.
func BuildNetwork(cfg models.NetworkConfig, owner string) *models.Network {
	v := cfg.Validators
	entries := v.Custom
	if !v.UseCustom || len(entries) == 0 {
		entries = defaultValidators(v.ValidatorCount)
	}
	validators := make([]models.Validator, 0, len(entries))
	for _, e := range entries {
		addr := e.Address
		if addr == "" {
			addr = "cosmosvaloper1" + strings.ReplaceAll(uuid.NewString(), "-", "")
		}
		validators = append(validators, models.Validator{
			ID:      uuid.NewString(),
			Name:    e.Name,
			Power:   e.Power,
			Address: addr,
			PubKey:  e.PubKey,
			Status:  models.ValidatorInactive,
		})
	}

	res := instanceResources[cfg.Deployment.InstanceType]
	res.DiskGB = cfg.Deployment.DiskSizeGB
	res.InstanceType = cfg.Deployment.InstanceType

	deployment := models.Deployment{
		Provider:  cfg.Deployment.Provider,
		Region:    cfg.Deployment.Region,
		Resources: res,
	}
	switch cfg.Deployment.Provider {
	case models.ProviderAWS:
		deployment.AWS = &models.AWSConfig{InstanceType: cfg.Deployment.InstanceType}
	case models.ProviderGCP:
		deployment.GCP = &models.GCPConfig{MachineType: cfg.Deployment.InstanceType, Zone: cfg.Deployment.Region}
	case models.ProviderAzure:
		deployment.Azure = &models.AzureConfig{VMSize: cfg.Deployment.InstanceType}
	case models.ProviderDigitalOcean:
		deployment.DigitalOcean = &models.DigitalOceanConfig{DropletSize: cfg.Deployment.InstanceType}
	case models.ProviderLocal:
		deployment.Local = &models.LocalConfig{BasePort: 26656}
	}

	t := cfg.Tokenomics
	g := cfg.Governance
	return &models.Network{
		Name:           cfg.BasicInfo.ChainName,
		ChainID:        cfg.BasicInfo.ChainID,
		Description:    cfg.BasicInfo.Description,
		Owner:          owner,
		Status:         models.StatusDeploying,
		DeploymentType: cfg.BasicInfo.DeploymentType,
		NodeCount:      v.ValidatorCount,
		Validators:     validators,
		Modules:        defaultModules(cfg),
		Tokenomics: models.Tokenomics{
			Denom:         t.Denom,
			Symbol:        t.Symbol,
			Display:       t.Display,
			InitialSupply: t.InitialSupply,
			MaxSupply:     t.MaxSupply,
		},
		Governance: models.Governance{
			VotingPeriod: g.VotingPeriod,
			MinDeposit:   g.MinDeposit,
			Quorum:       g.Quorum,
			Threshold:    g.Threshold,
		},
		Deployment: deployment,
	}
}

// defaultModules carries the wizard settings that have no column of their
// own into the genesis module configs.
func defaultModules(cfg models.NetworkConfig) []models.Module {
	raw := func(v interface{}) json.RawMessage {
		b, _ := json.Marshal(v)
		return b
	}
	g, v, t := cfg.Governance, cfg.Validators, cfg.Tokenomics
	return []models.Module{
		{Name: "auth", Enabled: true, Version: "v1"},
		{Name: "bank", Enabled: true, Version: "v1", Config: raw(map[string]interface{}{
			"denom": t.Denom, "decimals": t.Decimals, "distribution": t.Distribution,
		})},
		{Name: "staking", Enabled: true, Version: "v1", Config: raw(map[string]interface{}{
			"maxValidators": v.MaxValidators, "unbondingDays": v.UnbondingDays, "minSelfDelegation": v.MinSelfDelegation,
		})},
		{Name: "gov", Enabled: true, Version: "v1", Config: raw(map[string]interface{}{
			"depositPeriod": g.DepositPeriod, "processingPeriod": g.ProcessingPeriod, "vetoThreshold": g.VetoThreshold,
		})},
		{Name: "mint", Enabled: true, Version: "v1", Config: raw(map[string]interface{}{
			"inflationRate": t.InflationRate,
		})},
		{Name: "distribution", Enabled: true, Version: "v1"},
		{Name: "slashing", Enabled: true, Version: "v1"},
	}
}
