package models

type Role string

const (
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

type NetworkStatus string

const (
	StatusPlanned    NetworkStatus = "planned"
	StatusDeploying  NetworkStatus = "deploying"
	StatusActive     NetworkStatus = "active"
	StatusError      NetworkStatus = "error"
	StatusStopped    NetworkStatus = "stopped"
	StatusTerminated NetworkStatus = "terminated"
)

var NetworkStatuses = []NetworkStatus{
	StatusPlanned, StatusDeploying, StatusActive, StatusError, StatusStopped, StatusTerminated,
}

func (s NetworkStatus) Valid() bool {
	for _, v := range NetworkStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type DeploymentType string

const (
	DeploymentLocal   DeploymentType = "local"
	DeploymentTestnet DeploymentType = "testnet"
	DeploymentMainnet DeploymentType = "mainnet"
	DeploymentPrivate DeploymentType = "private"
)

var DeploymentTypes = []DeploymentType{
	DeploymentLocal, DeploymentTestnet, DeploymentMainnet, DeploymentPrivate,
}

func (d DeploymentType) Valid() bool {
	for _, v := range DeploymentTypes {
		if d == v {
			return true
		}
	}
	return false
}

type ValidatorStatus string

const (
	ValidatorActive   ValidatorStatus = "active"
	ValidatorInactive ValidatorStatus = "inactive"
	ValidatorJailed   ValidatorStatus = "jailed"
)

func (s ValidatorStatus) Valid() bool {
	switch s {
	case ValidatorActive, ValidatorInactive, ValidatorJailed:
		return true
	}
	return false
}

type LogLevel string

const (
	LevelInfo     LogLevel = "info"
	LevelWarning  LogLevel = "warning"
	LevelError    LogLevel = "error"
	LevelCritical LogLevel = "critical"
)

var LogLevels = []LogLevel{LevelInfo, LevelWarning, LevelError, LevelCritical}

func (l LogLevel) Valid() bool {
	for _, v := range LogLevels {
		if l == v {
			return true
		}
	}
	return false
}

type Provider string

const (
	ProviderAWS          Provider = "aws"
	ProviderGCP          Provider = "gcp"
	ProviderAzure        Provider = "azure"
	ProviderDigitalOcean Provider = "digitalocean"
	ProviderLocal        Provider = "local"
)

var Providers = []Provider{ProviderAWS, ProviderGCP, ProviderAzure, ProviderDigitalOcean, ProviderLocal}

func (p Provider) Valid() bool {
	for _, v := range Providers {
		if p == v {
			return true
		}
	}
	return false
}
