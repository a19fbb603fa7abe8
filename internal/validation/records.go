package validation

import (
	"fmt"
	"strings"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
)

// User checks a user record before it is stored. The password is checked
// separately since stored records only carry the hash.
func User(u models.User) Errors {
	errs := Errors{}
	if strings.TrimSpace(u.Name) == "" {
		errs["name"] = "Name is required"
	}
	errs.set("email", Email(u.Email))
	if !u.Role.Valid() {
		errs["role"] = "Role must be one of user, admin, operator, viewer"
	}
	return errs
}

// Network checks a network record before it is stored.
func Network(n models.Network) Errors {
	errs := Errors{}
	errs.set("name", ChainName(n.Name))
	errs.set("chainId", ChainID(n.ChainID))
	if length(n.Description) > 500 {
		errs["description"] = "Description must be 500 characters or less"
	}
	if !n.Status.Valid() {
		errs["status"] = "Status must be one of planned, deploying, active, error, stopped, terminated"
	}
	if !n.DeploymentType.Valid() {
		errs["deploymentType"] = "Deployment type must be one of local, testnet, mainnet, private"
	}
	if n.NodeCount < 0 {
		errs["nodeCount"] = "Node count cannot be negative"
	}
	for i, v := range n.Validators {
		errs.Merge(fmt.Sprintf("validators.%d", i), NetworkValidator(v))
	}
	for i, m := range n.Modules {
		if strings.TrimSpace(m.Name) == "" {
			errs[fmt.Sprintf("modules.%d.name", i)] = "Module name is required"
		}
	}
	errs.Merge("deployment", ProviderVariant(n.Deployment))
	return errs
}

// NetworkValidator checks a validator attached to a stored network.
func NetworkValidator(v models.Validator) Errors {
	errs := Errors{}
	errs.set("name", requiredLength(v.Name, "Validator name", 3, 50))
	if v.Power <= 0 {
		errs["power"] = "Voting power must be greater than 0"
	}
	if v.Status != "" && !v.Status.Valid() {
		errs["status"] = "Validator status must be one of active, inactive, jailed"
	}
	return errs
}

// ProviderVariant enforces that at most one provider block is set and that
// it matches the declared provider.
func ProviderVariant(d models.Deployment) Errors {
	errs := Errors{}
	if d.Provider != "" && !d.Provider.Valid() {
		errs["provider"] = "Provider must be one of aws, gcp, azure, digitalocean, local"
		return errs
	}
	blocks := d.ProviderBlocks()
	switch {
	case len(blocks) > 1:
		errs["provider"] = "Only one provider configuration block may be set"
	case len(blocks) == 1 && blocks[0] != d.Provider:
		errs[string(blocks[0])] = fmt.Sprintf("Provider configuration %q does not match provider %q", blocks[0], d.Provider)
	}
	return errs
}
