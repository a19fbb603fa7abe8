package validation

import (
	"strings"
	"testing"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() models.NetworkConfig {
	cfg := models.DefaultNetworkConfig()
	cfg.BasicInfo.ChainName = "Test Chain"
	cfg.BasicInfo.ChainID = "test-chain-1"
	return cfg
}

func TestConfig_DefaultsWithNamesPass(t *testing.T) {
	assert.Empty(t, Config(validConfig()))
}

func TestConfig_DefaultsRequireNames(t *testing.T) {
	errs := Config(models.DefaultNetworkConfig())
	assert.Equal(t, "Chain name is required", errs["basicInfo.chainName"])
	assert.Equal(t, "Chain ID is required", errs["basicInfo.chainId"])
}

func TestBasicInfo(t *testing.T) {
	b := validConfig().BasicInfo

	b.ChainName = "ab"
	assert.Equal(t, "Chain name must be between 3 and 50 characters", BasicInfo(b)["chainName"])

	b.ChainName = strings.Repeat("x", 51)
	assert.NotEmpty(t, BasicInfo(b)["chainName"])

	b.ChainName = strings.Repeat("x", 50)
	assert.Empty(t, BasicInfo(b)["chainName"])

	b.Description = strings.Repeat("d", 501)
	assert.Equal(t, "Description must be 500 characters or less", BasicInfo(b)["description"])

	b.DeploymentType = "devnet"
	assert.Contains(t, BasicInfo(b), "deploymentType")
}

func TestGovernance_PercentBounds(t *testing.T) {
	cases := []struct {
		value   float64
		wantErr bool
	}{
		{-0.1, true},
		{0, false},
		{33.4, false},
		{100, false},
		{100.1, true},
	}
	for _, tc := range cases {
		g := validConfig().Governance
		g.Quorum = tc.value
		g.VetoThreshold = tc.value
		errs := Governance(g)
		assert.Equal(t, tc.wantErr, errs["quorum"] != "", "quorum %v", tc.value)
		assert.Equal(t, tc.wantErr, errs["vetoThreshold"] != "", "vetoThreshold %v", tc.value)
	}
}

func TestGovernance_ThresholdMustBePositive(t *testing.T) {
	g := validConfig().Governance
	for _, v := range []float64{-5, 0} {
		g.Threshold = v
		assert.Equal(t, "Threshold must be greater than 0 and at most 100", Governance(g)["threshold"])
	}
	g.Threshold = 0.5
	assert.Empty(t, Governance(g)["threshold"])
	g.Threshold = 101
	assert.NotEmpty(t, Governance(g)["threshold"])
}

func TestGovernance_Periods(t *testing.T) {
	g := validConfig().Governance
	g.VotingPeriod = 0
	g.DepositPeriod = 91
	g.ProcessingPeriod = 31
	g.MinDeposit = 0
	errs := Governance(g)
	assert.Len(t, errs, 4)
	assert.Equal(t, "Voting period must be between 1 and 90 days", errs["votingPeriod"])

	g.ProcessingPeriod = 0
	assert.Empty(t, Governance(g)["processingPeriod"])
}

func TestValidatorSettings_Counts(t *testing.T) {
	v := validConfig().Validators

	for _, n := range []int{0, 51} {
		v.ValidatorCount = n
		v.MaxValidators = 100
		assert.Equal(t, "Validator count must be between 1 and 50", ValidatorSettings(v)["validatorCount"], "count %d", n)
	}

	v.ValidatorCount = 10
	v.MaxValidators = 9
	assert.Equal(t, "Max validators must be at least the validator count", ValidatorSettings(v)["maxValidators"])

	v.MaxValidators = 501
	assert.Equal(t, "Max validators cannot exceed 500", ValidatorSettings(v)["maxValidators"])

	v.MaxValidators = 10
	assert.Empty(t, ValidatorSettings(v))
}

func TestValidatorSettings_CustomEntriesChecked(t *testing.T) {
	v := validConfig().Validators
	v.UseCustom = true
	assert.Contains(t, ValidatorSettings(v), "custom")

	v.Custom = []models.ValidatorEntry{
		{Name: "Alpha", Power: 50, CommissionRate: 10, MaxRate: 20, MaxChangeRate: 1},
		{Name: "B", Power: 0, CommissionRate: 10, MaxRate: 20, MaxChangeRate: 1},
	}
	errs := ValidatorSettings(v)
	assert.NotContains(t, errs, "custom.0.name")
	assert.Equal(t, "Validator name must be between 3 and 50 characters", errs["custom.1.name"])
	assert.Equal(t, "Voting power must be greater than 0", errs["custom.1.power"])

	v.UseCustom = false
	assert.Empty(t, ValidatorSettings(v))
}

func TestValidator_Identity(t *testing.T) {
	base := models.ValidatorEntry{Name: "Alpha", Power: 1, CommissionRate: 5, MaxRate: 20, MaxChangeRate: 1}

	cases := map[string]bool{
		"A1B2C3D4E5F60708":  true,
		"a1b2c3d4e5f60708":  false,
		"A1B2C3D4E5F6070":   false,
		"A1B2C3D4E5F607089": false,
		"G1B2C3D4E5F60708":  false,
		"":                  true,
	}
	for identity, ok := range cases {
		v := base
		v.Identity = identity
		_, hasErr := Validator(v)["identity"]
		assert.Equal(t, !ok, hasErr, "identity %q", identity)
	}
}

func TestValidator_Website(t *testing.T) {
	v := models.ValidatorEntry{Name: "Alpha", Power: 1, MaxRate: 20}

	v.Website = "https://validator.example.com"
	assert.NotContains(t, Validator(v), "website")

	v.Website = "ftp://validator.example.com"
	assert.Equal(t, "Website must be a valid URL", Validator(v)["website"])

	v.Website = "http://bad host"
	assert.Contains(t, Validator(v), "website")
}

func TestValidator_Rates(t *testing.T) {
	v := models.ValidatorEntry{Name: "Alpha", Power: 1, CommissionRate: 25, MaxRate: 20, MaxChangeRate: 21}
	errs := Validator(v)
	assert.Equal(t, "Commission rate cannot exceed max rate", errs["commissionRate"])
	assert.Equal(t, "Max change rate cannot exceed max rate", errs["maxChangeRate"])

	v.CommissionRate = -1
	v.MaxRate = 101
	v.MaxChangeRate = 1
	errs = Validator(v)
	assert.Equal(t, "Commission rate must be between 0 and 100", errs["commissionRate"])
	assert.Equal(t, "Max rate must be between 0 and 100", errs["maxRate"])
	assert.NotContains(t, errs, "maxChangeRate")

	v.Details = strings.Repeat("d", 281)
	assert.Equal(t, "Details must be 280 characters or less", Validator(v)["details"])
}

func TestTokenomics(t *testing.T) {
	tk := validConfig().Tokenomics

	tk.MaxSupply = tk.InitialSupply - 1
	assert.Contains(t, Tokenomics(tk), "maxSupply")
	tk.MaxSupply = 0
	assert.NotContains(t, Tokenomics(tk), "maxSupply")

	tk.Decimals = 19
	tk.Symbol = "S"
	tk.Denom = ""
	errs := Tokenomics(tk)
	assert.Equal(t, "Decimals must be between 0 and 18", errs["decimals"])
	assert.Equal(t, "Symbol must be between 2 and 10 characters", errs["symbol"])
	assert.Equal(t, "Denom is required", errs["denom"])
}

func TestTokenomics_Distribution(t *testing.T) {
	tk := validConfig().Tokenomics
	tk.Distribution.Reserve = 5
	assert.Equal(t, "Token distribution must total 100%", Tokenomics(tk)["distribution"])

	tk.Distribution = models.Allocation{Validators: 33.3, Community: 33.3, Team: 33.4}
	assert.NotContains(t, Tokenomics(tk), "distribution")

	tk.Distribution = models.Allocation{Validators: 120, Community: -20}
	errs := Tokenomics(tk)
	assert.Equal(t, "Allocation must be between 0 and 100", errs["distribution.validators"])
	assert.Contains(t, errs, "distribution.community")
	assert.NotContains(t, errs, "distribution")
}

func TestDeployment(t *testing.T) {
	d := validConfig().Deployment
	d.Provider = "hetzner"
	d.InstanceType = "huge"
	d.DiskSizeGB = 19
	d.Region = " "
	errs := Deployment(d)
	require.Len(t, errs, 4)
	assert.Equal(t, "Disk size must be between 20 and 2000 GB", errs["diskSizeGB"])
	assert.Equal(t, "Region is required", errs["region"])
}

func TestField_UsesContext(t *testing.T) {
	cfg := validConfig()
	cfg.Validators.UseCustom = true
	cfg.Validators.Custom = []models.ValidatorEntry{{Name: "Alpha", Power: 1, CommissionRate: 15, MaxRate: 20, MaxChangeRate: 1}}
	assert.Empty(t, Field(cfg, "validators.custom.0.commissionRate"))

	cfg.Validators.Custom[0].MaxRate = 10
	assert.Equal(t, "Commission rate cannot exceed max rate", Field(cfg, "validators.custom.0.commissionRate"))
}

func TestSliderBounds(t *testing.T) {
	b, ok := SliderBounds("validators.validatorCount")
	require.True(t, ok)
	assert.Equal(t, 1.0, b.Clamp(-3))
	assert.Equal(t, 50.0, b.Clamp(80))
	assert.Equal(t, 7.0, b.Clamp(7))

	_, ok = SliderBounds("basicInfo.chainName")
	assert.False(t, ok)
}

func TestErrors_Error(t *testing.T) {
	errs := Errors{"b": "second", "a": "first"}
	assert.Equal(t, "a: first; b: second", errs.Error())
}

func TestPassword(t *testing.T) {
	cases := []struct {
		password string
		want     error
	}{
		{"Sh0rt!", ErrPasswordTooShort},
		{strings.Repeat("Aa1!", 33), ErrPasswordTooLong},
		{"lowercase1!", ErrPasswordNoUpper},
		{"UPPERCASE1!", ErrPasswordNoLower},
		{"NoNumbers!", ErrPasswordNoNumber},
		{"NoSpecial1", ErrPasswordNoSpecial},
		{"Val1dPass!", nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Password(tc.password), tc.password)
	}
}

func TestNetwork(t *testing.T) {
	n := models.Network{Name: "Hb", ChainID: "hub-1", Status: models.StatusPlanned, DeploymentType: models.DeploymentTestnet}
	assert.Equal(t, "Chain name must be between 3 and 50 characters", Network(n)["name"])

	n.Name = "Cosmos Hub"
	assert.Empty(t, Network(n))

	n.Validators = []models.Validator{{Name: "val", Power: 0, Status: "slashed"}}
	errs := Network(n)
	assert.Contains(t, errs, "validators.0.power")
	assert.Contains(t, errs, "validators.0.status")
}

func TestProviderVariant(t *testing.T) {
	d := models.Deployment{Provider: models.ProviderAWS, AWS: &models.AWSConfig{AccountID: "123456789012"}}
	assert.Empty(t, ProviderVariant(d))

	d.GCP = &models.GCPConfig{}
	assert.Equal(t, "Only one provider configuration block may be set", ProviderVariant(d)["provider"])

	d = models.Deployment{Provider: models.ProviderAWS, Azure: &models.AzureConfig{}}
	assert.Contains(t, ProviderVariant(d), "azure")
}

func TestUser(t *testing.T) {
	errs := User(models.User{Email: "nope", Role: "root"})
	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "Email must be a valid email address", errs["email"])
	assert.Contains(t, errs, "role")

	assert.Empty(t, User(models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin}))
}
