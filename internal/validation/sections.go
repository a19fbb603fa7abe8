package validation

import (
	"fmt"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
)

// Bounds is the inclusive numeric range of a slider-backed field.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (b Bounds) Clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// MaxValidatorCount is the largest generated validator set.
const MaxValidatorCount = 50

// sliders are keyed by path with list indexes replaced by "*".
var sliders = map[string]Bounds{
	"governance.votingPeriod":            {1, 90},
	"governance.depositPeriod":           {1, 90},
	"governance.processingPeriod":        {0, 30},
	"governance.quorum":                  {0, 100},
	"governance.threshold":               {0, 100},
	"governance.vetoThreshold":           {0, 100},
	"validators.validatorCount":          {1, MaxValidatorCount},
	"validators.maxValidators":           {1, 500},
	"validators.unbondingDays":           {1, 60},
	"validators.custom.*.commissionRate": {0, 100},
	"validators.custom.*.maxRate":        {0, 100},
	"validators.custom.*.maxChangeRate":  {0, 100},
	"tokenomics.decimals":                {0, 18},
	"tokenomics.inflationRate":           {0, 100},
	"tokenomics.distribution.validators": {0, 100},
	"tokenomics.distribution.community":  {0, 100},
	"tokenomics.distribution.team":       {0, 100},
	"tokenomics.distribution.investors":  {0, 100},
	"tokenomics.distribution.reserve":    {0, 100},
	"deployment.diskSizeGB":              {20, 2000},
}

// SliderBounds looks up the range of a normalized path.
func SliderBounds(pattern string) (Bounds, bool) {
	b, ok := sliders[pattern]
	return b, ok
}

func BasicInfo(b models.BasicInfo) Errors {
	errs := Errors{}
	errs.set("chainName", ChainName(b.ChainName))
	errs.set("chainId", ChainID(b.ChainID))
	if length(b.Description) > 500 {
		errs["description"] = "Description must be 500 characters or less"
	}
	if !b.DeploymentType.Valid() {
		errs["deploymentType"] = "Deployment type must be one of local, testnet, mainnet, private"
	}
	return errs
}

func Governance(g models.GovernanceSettings) Errors {
	errs := Errors{}
	errs.set("votingPeriod", between(float64(g.VotingPeriod), 1, 90, "Voting period must be between 1 and 90 days"))
	errs.set("depositPeriod", between(float64(g.DepositPeriod), 1, 90, "Deposit period must be between 1 and 90 days"))
	errs.set("processingPeriod", between(float64(g.ProcessingPeriod), 0, 30, "Processing period must be between 0 and 30 days"))
	if g.MinDeposit < 1 {
		errs["minDeposit"] = "Minimum deposit must be at least 1"
	}
	errs.set("quorum", between(g.Quorum, 0, 100, "Quorum must be between 0 and 100"))
	if g.Threshold <= 0 || g.Threshold > 100 {
		errs["threshold"] = "Threshold must be greater than 0 and at most 100"
	}
	errs.set("vetoThreshold", between(g.VetoThreshold, 0, 100, "Veto threshold must be between 0 and 100"))
	return errs
}

// ValidatorSettings checks the counts; custom entries are only checked when
// useCustom is on.
func ValidatorSettings(v models.ValidatorSettings) Errors {
	errs := Errors{}
	errs.set("validatorCount", between(float64(v.ValidatorCount), 1, MaxValidatorCount, "Validator count must be between 1 and 50"))
	switch {
	case v.MaxValidators < v.ValidatorCount:
		errs["maxValidators"] = "Max validators must be at least the validator count"
	case v.MaxValidators > 500:
		errs["maxValidators"] = "Max validators cannot exceed 500"
	}
	errs.set("unbondingDays", between(float64(v.UnbondingDays), 1, 60, "Unbonding time must be between 1 and 60 days"))
	if v.MinSelfDelegation < 1 {
		errs["minSelfDelegation"] = "Minimum self delegation must be at least 1"
	}
	if v.UseCustom {
		if len(v.Custom) == 0 {
			errs["custom"] = "At least one custom validator is required"
		}
		for i, entry := range v.Custom {
			errs.Merge(fmt.Sprintf("custom.%d", i), Validator(entry))
		}
	}
	return errs
}

// Validator checks one custom validator entry, including the rate relations.
func Validator(v models.ValidatorEntry) Errors {
	errs := Errors{}
	errs.set("name", requiredLength(v.Name, "Validator name", 3, 50))
	if v.Website != "" && !websitePattern.MatchString(v.Website) {
		errs["website"] = "Website must be a valid URL"
	}
	if v.Identity != "" && !identityPattern.MatchString(v.Identity) {
		errs["identity"] = "Identity must be a 16-character uppercase hex string"
	}
	if length(v.Details) > 280 {
		errs["details"] = "Details must be 280 characters or less"
	}
	if v.Power <= 0 {
		errs["power"] = "Voting power must be greater than 0"
	}

	errs.set("maxRate", between(v.MaxRate, 0, 100, "Max rate must be between 0 and 100"))
	switch {
	case v.CommissionRate < 0 || v.CommissionRate > 100:
		errs["commissionRate"] = "Commission rate must be between 0 and 100"
	case v.CommissionRate > v.MaxRate:
		errs["commissionRate"] = "Commission rate cannot exceed max rate"
	}
	switch {
	case v.MaxChangeRate < 0 || v.MaxChangeRate > 100:
		errs["maxChangeRate"] = "Max change rate must be between 0 and 100"
	case v.MaxChangeRate > v.MaxRate:
		errs["maxChangeRate"] = "Max change rate cannot exceed max rate"
	}
	return errs
}

func Tokenomics(t models.TokenomicsSettings) Errors {
	errs := Errors{}
	errs.set("denom", requiredLength(t.Denom, "Denom", 3, 20))
	errs.set("symbol", requiredLength(t.Symbol, "Symbol", 2, 10))
	errs.set("decimals", between(float64(t.Decimals), 0, 18, "Decimals must be between 0 and 18"))
	if t.InitialSupply < 1 {
		errs["initialSupply"] = "Initial supply must be at least 1"
	}
	if t.MaxSupply != 0 && t.MaxSupply < t.InitialSupply {
		errs["maxSupply"] = "Max supply must be 0 (unlimited) or at least the initial supply"
	}
	errs.set("inflationRate", between(t.InflationRate, 0, 100, "Inflation rate must be between 0 and 100"))

	d := t.Distribution
	buckets := map[string]float64{
		"validators": d.Validators,
		"community":  d.Community,
		"team":       d.Team,
		"investors":  d.Investors,
		"reserve":    d.Reserve,
	}
	bad := false
	for name, v := range buckets {
		if v < 0 || v > 100 {
			errs["distribution."+name] = "Allocation must be between 0 and 100"
			bad = true
		}
	}
	if !bad && !approxEqual(d.Total(), 100) {
		errs["distribution"] = "Token distribution must total 100%"
	}
	return errs
}

var instanceTypes = map[string]bool{"small": true, "medium": true, "large": true, "xlarge": true}

func Deployment(d models.DeploymentSettings) Errors {
	errs := Errors{}
	if !d.Provider.Valid() {
		errs["provider"] = "Provider must be one of aws, gcp, azure, digitalocean, local"
	}
	if !instanceTypes[d.InstanceType] {
		errs["instanceType"] = "Instance type must be one of small, medium, large, xlarge"
	}
	errs.set("diskSizeGB", between(float64(d.DiskSizeGB), 20, 2000, "Disk size must be between 20 and 2000 GB"))
	if length(d.Region) == 0 {
		errs["region"] = "Region is required"
	}
	return errs
}

// Config runs every section and returns the aggregate map keyed by full path.
func Config(cfg models.NetworkConfig) Errors {
	errs := Errors{}
	errs.Merge("basicInfo", BasicInfo(cfg.BasicInfo))
	errs.Merge("governance", Governance(cfg.Governance))
	errs.Merge("validators", ValidatorSettings(cfg.Validators))
	errs.Merge("tokenomics", Tokenomics(cfg.Tokenomics))
	errs.Merge("deployment", Deployment(cfg.Deployment))
	return errs
}

// Field evaluates the rule of a single path against cfg. Cross-field rules
// see the rest of cfg as context.
func Field(cfg models.NetworkConfig, path string) string {
	return Config(cfg)[path]
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
