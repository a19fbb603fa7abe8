package models

import "time"

// Patch fields are pointers: nil leaves the stored value alone, a non-nil
// pointer (including one to "" or 0) overwrites it.

type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *Role   `json:"role"`
	Company  *string `json:"company"`
	IsActive *bool   `json:"isActive"`
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil && p.Company == nil && p.IsActive == nil
}

func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Company != nil {
		u.Company = *p.Company
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
}

type NetworkPatch struct {
	Name           *string         `json:"name"`
	ChainID        *string         `json:"chainId"`
	Description    *string         `json:"description"`
	Owner          *string         `json:"owner"`
	DeploymentType *DeploymentType `json:"deploymentType"`
	NodeCount      *int            `json:"nodeCount"`
	Modules        *[]Module       `json:"modules"`
	Tokenomics     *Tokenomics     `json:"tokenomics"`
	Governance     *Governance     `json:"governance"`
	Deployment     *Deployment     `json:"deployment"`
}

func (p NetworkPatch) Apply(n *Network) {
	if p.Name != nil {
		n.Name = *p.Name
	}
	if p.ChainID != nil {
		n.ChainID = *p.ChainID
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Owner != nil {
		n.Owner = *p.Owner
	}
	if p.DeploymentType != nil {
		n.DeploymentType = *p.DeploymentType
	}
	if p.NodeCount != nil {
		n.NodeCount = *p.NodeCount
	}
	if p.Modules != nil {
		n.Modules = *p.Modules
	}
	if p.Tokenomics != nil {
		n.Tokenomics = *p.Tokenomics
	}
	if p.Governance != nil {
		n.Governance = *p.Governance
	}
	if p.Deployment != nil {
		n.Deployment = *p.Deployment
	}
}

// ProviderBlocks reports which provider-specific blocks are populated.
func (d Deployment) ProviderBlocks() []Provider {
	var out []Provider
	if d.AWS != nil {
		out = append(out, ProviderAWS)
	}
	if d.GCP != nil {
		out = append(out, ProviderGCP)
	}
	if d.Azure != nil {
		out = append(out, ProviderAzure)
	}
	if d.DigitalOcean != nil {
		out = append(out, ProviderDigitalOcean)
	}
	if d.Local != nil {
		out = append(out, ProviderLocal)
	}
	return out
}

// SetStatus moves the network to status, stamping DeployedAt on the first
// entry into active and LastActiveAt on every entry into active.
func (n *Network) SetStatus(s NetworkStatus, at time.Time) NetworkStatus {
	prev := n.Status
	n.Status = s
	if s == StatusActive && prev != StatusActive {
		t := at
		if n.DeployedAt == nil {
			n.DeployedAt = &t
		}
		n.LastActiveAt = &t
	}
	return prev
}
