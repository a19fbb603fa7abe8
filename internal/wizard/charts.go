package wizard

import (
	"fmt"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
)

type Derived struct {
	VotingPower        []VotingPowerBar  `json:"votingPower"`
	TokenDistribution  []AllocationSlice `json:"tokenDistribution"`
	GovernanceTimeline []TimelinePhase   `json:"governanceTimeline"`
}

type VotingPowerBar struct {
	Name    string  `json:"name"`
	Power   float64 `json:"power"`
	Percent float64 `json:"percent"`
}

type AllocationSlice struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

// Days are offsets from proposal submission.
type TimelinePhase struct {
	Name     string `json:"name"`
	StartDay int    `json:"startDay"`
	EndDay   int    `json:"endDay"`
}

func Derive(cfg models.NetworkConfig) Derived {
	return Derived{
		VotingPower:        VotingPower(cfg.Validators),
		TokenDistribution:  TokenDistribution(cfg.Tokenomics),
		GovernanceTimeline: GovernanceTimeline(cfg.Governance),
	}
}

// VotingPower gives each validator its share of the total power. Without
// custom validators the configured count, capped at the largest valid
// count, is split evenly.
func VotingPower(v models.ValidatorSettings) []VotingPowerBar {
	bars := []VotingPowerBar{}
	if !v.UseCustom {
		n := generatedCount(v.ValidatorCount)
		if n < 1 {
			return bars
		}
		share := 100 / float64(n)
		for i := 1; i <= n; i++ {
			bars = append(bars, VotingPowerBar{Name: fmt.Sprintf("Validator %d", i), Power: share, Percent: share})
		}
		return bars
	}

	var total float64
	for _, e := range v.Custom {
		if e.Power > 0 {
			total += e.Power
		}
	}
	for _, e := range v.Custom {
		bar := VotingPowerBar{Name: e.Name, Power: e.Power}
		if total > 0 && e.Power > 0 {
			bar.Percent = e.Power / total * 100
		}
		bars = append(bars, bar)
	}
	return bars
}

func TokenDistribution(t models.TokenomicsSettings) []AllocationSlice {
	d := t.Distribution
	buckets := []struct {
		name    string
		percent float64
	}{
		{"Validators", d.Validators},
		{"Community", d.Community},
		{"Team", d.Team},
		{"Investors", d.Investors},
		{"Reserve", d.Reserve},
	}
	out := make([]AllocationSlice, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, AllocationSlice{
			Name:    b.name,
			Percent: b.percent,
			Amount:  t.InitialSupply * b.percent / 100,
		})
	}
	return out
}

// GovernanceTimeline lays the proposal phases end to end: deposit, voting,
// then processing.
func GovernanceTimeline(g models.GovernanceSettings) []TimelinePhase {
	deposit := TimelinePhase{Name: "Deposit", StartDay: 0, EndDay: g.DepositPeriod}
	voting := TimelinePhase{Name: "Voting", StartDay: deposit.EndDay, EndDay: deposit.EndDay + g.VotingPeriod}
	processing := TimelinePhase{Name: "Processing", StartDay: voting.EndDay, EndDay: voting.EndDay + g.ProcessingPeriod}
	return []TimelinePhase{deposit, voting, processing}
}
