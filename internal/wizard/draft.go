// Package wizard keeps the state of in-progress network creations, derives
// the chart series shown next to the form and turns a finished draft into a
// network record with a simulated deployment.
package wizard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/validation"
)

var (
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidValue    = errors.New("invalid value")
	ErrIndexOutOfRange = errors.New("validator index out of range")
	ErrDraftNotFound   = errors.New("draft not found")
	ErrNotConfirmed    = errors.New("deployment must be confirmed")
)

// ValidationError carries the field map of a rejected draft.
type ValidationError struct {
	Errors validation.Errors
}

func (e *ValidationError) Error() string {
	return "configuration is invalid: " + e.Errors.Error()
}

// Draft is one in-progress network creation.
type Draft struct {
	ID        string               `json:"id"`
	OwnerID   string               `json:"ownerId,omitempty"`
	Config    models.NetworkConfig `json:"config"`
	Errors    validation.Errors    `json:"errors"`
	Touched   []string             `json:"touched,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// related lists fields whose rule reads the edited one.
var related = map[string][]string{
	"validators.validatorCount":   {"validators.maxValidators"},
	"tokenomics.initialSupply":    {"tokenomics.maxSupply"},
	"validators.custom.*.maxRate": {"commissionRate", "maxChangeRate"},
}

func NewDraft(ownerID string, now time.Time) *Draft {
	return &Draft{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Config:    models.DefaultNetworkConfig(),
		Errors:    validation.Errors{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetField writes value at a dotted config path and re-evaluates the rules.
// validators.useCustom goes through ToggleCustomValidators so the list gets
// seeded.
func (d *Draft) SetField(path string, value interface{}) error {
	if path == "validators.useCustom" {
		on, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s expects boolean", ErrInvalidValue, path)
		}
		d.ToggleCustomValidators(on)
		return nil
	}
	if err := setPath(&d.Config, path, value); err != nil {
		return err
	}
	d.touch(path)
	if strings.HasPrefix(path, "tokenomics.distribution.") {
		d.touch("tokenomics.distribution")
	}
	pattern := sliderPattern(path)
	for _, r := range related[pattern] {
		if strings.HasPrefix(pattern, "validators.custom.") {
			d.touch(path[:strings.LastIndex(path, ".")] + "." + r)
			continue
		}
		d.touch(r)
	}
	d.revalidate()
	return nil
}

// SetSlider clamps value to the field's range before writing it.
func (d *Draft) SetSlider(path string, value float64) error {
	bounds, ok := validation.SliderBounds(sliderPattern(path))
	if !ok {
		return fmt.Errorf("%w: %s is not a numeric range", ErrInvalidValue, path)
	}
	return d.SetField(path, bounds.Clamp(value))
}

// ToggleCustomValidators switches between generated and hand-entered
// validators, seeding one entry per validator slot the first time.
func (d *Draft) ToggleCustomValidators(on bool) {
	v := &d.Config.Validators
	v.UseCustom = on
	if on && len(v.Custom) == 0 {
		v.Custom = defaultValidators(v.ValidatorCount)
	}
	d.touch("validators.custom")
	d.revalidate()
}

// generatedCount bounds a validator count that may not have passed the
// rules yet.
func generatedCount(n int) int {
	if n < 0 {
		return 0
	}
	if n > validation.MaxValidatorCount {
		return validation.MaxValidatorCount
	}
	return n
}

func defaultValidators(n int) []models.ValidatorEntry {
	n = generatedCount(n)
	out := make([]models.ValidatorEntry, 0, n)
	if n < 1 {
		return out
	}
	power := 100 / float64(n)
	for i := 1; i <= n; i++ {
		out = append(out, models.ValidatorEntry{
			Name:           fmt.Sprintf("Validator %d", i),
			Power:          power,
			CommissionRate: 10,
			MaxRate:        20,
			MaxChangeRate:  1,
		})
	}
	return out
}

// AddOrUpdateValidator appends entry when index is nil and replaces the
// entry at *index otherwise.
func (d *Draft) AddOrUpdateValidator(entry models.ValidatorEntry, index *int) (int, error) {
	list := d.Config.Validators.Custom
	var at int
	if index == nil {
		list = append(list, entry)
		at = len(list) - 1
	} else {
		at = *index
		if at < 0 || at >= len(list) {
			return 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, at)
		}
		list[at] = entry
	}
	d.Config.Validators.Custom = list
	d.touch(fmt.Sprintf("validators.custom.%d", at))
	d.revalidate()
	return at, nil
}

func (d *Draft) RemoveValidator(index int) error {
	list := d.Config.Validators.Custom
	if index < 0 || index >= len(list) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	d.Config.Validators.Custom = append(list[:index:index], list[index+1:]...)

	// Indexes after the removed entry shift, so per-entry marks no longer
	// line up; mark the list as a whole instead.
	kept := d.Touched[:0]
	for _, t := range d.Touched {
		if !strings.HasPrefix(t, "validators.custom.") {
			kept = append(kept, t)
		}
	}
	d.Touched = kept
	d.touch("validators.custom")
	d.revalidate()
	return nil
}

// ValidateAll evaluates every rule and shows every error.
func (d *Draft) ValidateAll() validation.Errors {
	d.Touched = []string{""}
	d.revalidate()
	return d.Errors
}

// Derived returns the chart series for the current config.
func (d *Draft) Derived() Derived {
	return Derive(d.Config)
}

func (d *Draft) touch(path string) {
	for _, t := range d.Touched {
		if t == path {
			return
		}
	}
	d.Touched = append(d.Touched, path)
}

// revalidate keeps only errors under a touched path so untouched fields of
// a fresh draft stay quiet.
func (d *Draft) revalidate() {
	all := validation.Config(d.Config)
	shown := validation.Errors{}
	for k, msg := range all {
		for _, t := range d.Touched {
			if t == "" || k == t || strings.HasPrefix(k, t+".") {
				shown[k] = msg
				break
			}
		}
	}
	d.Errors = shown
}
