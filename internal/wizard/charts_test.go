package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
)

func TestVotingPower_Custom(t *testing.T) {
	bars := VotingPower(models.ValidatorSettings{
		UseCustom: true,
		Custom: []models.ValidatorEntry{
			{Name: "a", Power: 1},
			{Name: "b", Power: 1},
			{Name: "c", Power: 2},
		},
	})
	require.Len(t, bars, 3)
	assert.InDelta(t, 25, bars[0].Percent, 1e-9)
	assert.InDelta(t, 50, bars[2].Percent, 1e-9)

	var sum float64
	for _, b := range bars {
		sum += b.Percent
	}
	assert.InDelta(t, 100, sum, 1e-9)
}

func TestVotingPower_Even(t *testing.T) {
	bars := VotingPower(models.ValidatorSettings{ValidatorCount: 3})
	require.Len(t, bars, 3)
	assert.Equal(t, "Validator 3", bars[2].Name)
	for _, b := range bars {
		assert.InDelta(t, 33.333, b.Percent, 0.001)
	}

	assert.Empty(t, VotingPower(models.ValidatorSettings{ValidatorCount: 0}))
}

func TestVotingPower_ZeroTotal(t *testing.T) {
	bars := VotingPower(models.ValidatorSettings{
		UseCustom: true,
		Custom:    []models.ValidatorEntry{{Name: "a"}, {Name: "b"}},
	})
	require.Len(t, bars, 2)
	assert.Zero(t, bars[0].Percent)
}

func TestTokenDistribution(t *testing.T) {
	slices := TokenDistribution(models.DefaultNetworkConfig().Tokenomics)
	require.Len(t, slices, 5)
	assert.Equal(t, "Validators", slices[0].Name)
	assert.Equal(t, 40.0, slices[0].Percent)
	assert.InDelta(t, 400_000_000, slices[0].Amount, 1e-6)
	assert.InDelta(t, 100_000_000, slices[4].Amount, 1e-6)
}

func TestGovernanceTimeline(t *testing.T) {
	phases := GovernanceTimeline(models.GovernanceSettings{DepositPeriod: 14, VotingPeriod: 14, ProcessingPeriod: 2})
	assert.Equal(t, []TimelinePhase{
		{Name: "Deposit", StartDay: 0, EndDay: 14},
		{Name: "Voting", StartDay: 14, EndDay: 28},
		{Name: "Processing", StartDay: 28, EndDay: 30},
	}, phases)
}
