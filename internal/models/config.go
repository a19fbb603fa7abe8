package models

// NetworkConfig is the configuration assembled by the creation wizard.
type NetworkConfig struct {
	BasicInfo  BasicInfo          `json:"basicInfo" yaml:"basicInfo"`
	Governance GovernanceSettings `json:"governance" yaml:"governance"`
	Validators ValidatorSettings  `json:"validators" yaml:"validators"`
	Tokenomics TokenomicsSettings `json:"tokenomics" yaml:"tokenomics"`
	Deployment DeploymentSettings `json:"deployment" yaml:"deployment"`
}

type BasicInfo struct {
	ChainName      string         `json:"chainName" yaml:"chainName"`
	ChainID        string         `json:"chainId" yaml:"chainId"`
	Description    string         `json:"description" yaml:"description"`
	DeploymentType DeploymentType `json:"deploymentType" yaml:"deploymentType"`
}

// Periods are in days.
type GovernanceSettings struct {
	DepositPeriod    int     `json:"depositPeriod" yaml:"depositPeriod"`
	VotingPeriod     int     `json:"votingPeriod" yaml:"votingPeriod"`
	ProcessingPeriod int     `json:"processingPeriod" yaml:"processingPeriod"`
	MinDeposit       float64 `json:"minDeposit" yaml:"minDeposit"`
	Quorum           float64 `json:"quorum" yaml:"quorum"`
	Threshold        float64 `json:"threshold" yaml:"threshold"`
	VetoThreshold    float64 `json:"vetoThreshold" yaml:"vetoThreshold"`
}

type ValidatorSettings struct {
	ValidatorCount    int              `json:"validatorCount" yaml:"validatorCount"`
	MaxValidators     int              `json:"maxValidators" yaml:"maxValidators"`
	UnbondingDays     int              `json:"unbondingDays" yaml:"unbondingDays"`
	MinSelfDelegation float64          `json:"minSelfDelegation" yaml:"minSelfDelegation"`
	UseCustom         bool             `json:"useCustom" yaml:"useCustom"`
	Custom            []ValidatorEntry `json:"custom" yaml:"custom"`
}

// Rates are percentages.
type ValidatorEntry struct {
	Name           string  `json:"name" yaml:"name"`
	Website        string  `json:"website" yaml:"website"`
	Identity       string  `json:"identity" yaml:"identity"`
	Details        string  `json:"details" yaml:"details"`
	Address        string  `json:"address" yaml:"address"`
	PubKey         string  `json:"pubKey" yaml:"pubKey"`
	Power          float64 `json:"power" yaml:"power"`
	CommissionRate float64 `json:"commissionRate" yaml:"commissionRate"`
	MaxRate        float64 `json:"maxRate" yaml:"maxRate"`
	MaxChangeRate  float64 `json:"maxChangeRate" yaml:"maxChangeRate"`
}

type TokenomicsSettings struct {
	Denom         string     `json:"denom" yaml:"denom"`
	Symbol        string     `json:"symbol" yaml:"symbol"`
	Display       string     `json:"display" yaml:"display"`
	Decimals      int        `json:"decimals" yaml:"decimals"`
	InitialSupply float64    `json:"initialSupply" yaml:"initialSupply"`
	MaxSupply     float64    `json:"maxSupply" yaml:"maxSupply"`
	InflationRate float64    `json:"inflationRate" yaml:"inflationRate"`
	Distribution  Allocation `json:"distribution" yaml:"distribution"`
}

// Allocation splits the initial supply; each bucket is a percentage.
type Allocation struct {
	Validators float64 `json:"validators" yaml:"validators"`
	Community  float64 `json:"community" yaml:"community"`
	Team       float64 `json:"team" yaml:"team"`
	Investors  float64 `json:"investors" yaml:"investors"`
	Reserve    float64 `json:"reserve" yaml:"reserve"`
}

func (a Allocation) Total() float64 {
	return a.Validators + a.Community + a.Team + a.Investors + a.Reserve
}

type DeploymentSettings struct {
	Provider     Provider `json:"provider" yaml:"provider"`
	Region       string   `json:"region" yaml:"region"`
	InstanceType string   `json:"instanceType" yaml:"instanceType"`
	DiskSizeGB   int      `json:"diskSizeGB" yaml:"diskSizeGB"`
}

// DefaultNetworkConfig is the starting point of a new wizard session.
func DefaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		BasicInfo: BasicInfo{DeploymentType: DeploymentLocal},
		Governance: GovernanceSettings{
			DepositPeriod:    14,
			VotingPeriod:     14,
			ProcessingPeriod: 2,
			MinDeposit:       1000,
			Quorum:           33.4,
			Threshold:        50,
			VetoThreshold:    33.4,
		},
		Validators: ValidatorSettings{
			ValidatorCount:    4,
			MaxValidators:     100,
			UnbondingDays:     21,
			MinSelfDelegation: 1,
			Custom:            []ValidatorEntry{},
		},
		Tokenomics: TokenomicsSettings{
			Denom:         "ustake",
			Symbol:        "STAKE",
			Display:       "stake",
			Decimals:      6,
			InitialSupply: 1_000_000_000,
			InflationRate: 7,
			Distribution: Allocation{
				Validators: 40,
				Community:  20,
				Team:       15,
				Investors:  15,
				Reserve:    10,
			},
		},
		Deployment: DeploymentSettings{
			Provider:     ProviderAWS,
			Region:       "us-east-1",
			InstanceType: "medium",
			DiskSizeGB:   100,
		},
	}
}
