package models

import (
	"encoding/json"
	"time"
)

type User struct {
	ID        string     `json:"id" bson:"_id"`
	Name      string     `json:"name" bson:"name"`
	Email     string     `json:"email" bson:"email"`
	Password  string     `json:"-" bson:"password"`
	Role      Role       `json:"role" bson:"role"`
	Company   string     `json:"company" bson:"company"`
	IsActive  bool       `json:"isActive" bson:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

type Network struct {
	ID             string         `json:"id" bson:"_id"`
	Name           string         `json:"name" bson:"name"`
	ChainID        string         `json:"chainId" bson:"chainId"`
	Description    string         `json:"description" bson:"description"`
	Owner          string         `json:"owner,omitempty" bson:"owner,omitempty"`
	Status         NetworkStatus  `json:"status" bson:"status"`
	DeploymentType DeploymentType `json:"deploymentType" bson:"deploymentType"`
	NodeCount      int            `json:"nodeCount" bson:"nodeCount"`
	Validators     []Validator    `json:"validators" bson:"validators"`
	Modules        []Module       `json:"modules" bson:"modules"`
	Tokenomics     Tokenomics     `json:"tokenomics" bson:"tokenomics"`
	Governance     Governance     `json:"governance" bson:"governance"`
	Deployment     Deployment     `json:"deployment" bson:"deployment"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updatedAt"`
	DeployedAt     *time.Time     `json:"deployedAt,omitempty" bson:"deployedAt,omitempty"`
	LastActiveAt   *time.Time     `json:"lastActiveAt,omitempty" bson:"lastActiveAt,omitempty"`
}

type Validator struct {
	ID      string          `json:"id" bson:"id"`
	Name    string          `json:"name" bson:"name"`
	Power   float64         `json:"power" bson:"power"`
	Address string          `json:"address" bson:"address"`
	PubKey  string          `json:"pubKey" bson:"pubKey"`
	Status  ValidatorStatus `json:"status" bson:"status"`
}

// Module config is kept as raw JSON; module shapes are not enumerable.
type Module struct {
	Name    string          `json:"name" bson:"name"`
	Enabled bool            `json:"enabled" bson:"enabled"`
	Version string          `json:"version" bson:"version"`
	Config  json.RawMessage `json:"config,omitempty" bson:"config,omitempty"`
}

type Tokenomics struct {
	Denom         string  `json:"denom" bson:"denom"`
	Symbol        string  `json:"symbol" bson:"symbol"`
	Display       string  `json:"display" bson:"display"`
	InitialSupply float64 `json:"initialSupply" bson:"initialSupply"`
	MaxSupply     float64 `json:"maxSupply" bson:"maxSupply"`
}

type Governance struct {
	VotingPeriod int     `json:"votingPeriod" bson:"votingPeriod"`
	MinDeposit   float64 `json:"minDeposit" bson:"minDeposit"`
	Quorum       float64 `json:"quorum" bson:"quorum"`
	Threshold    float64 `json:"threshold" bson:"threshold"`
}

type Resources struct {
	CPU          int    `json:"cpu" bson:"cpu"`
	MemoryGB     int    `json:"memoryGB" bson:"memoryGB"`
	DiskGB       int    `json:"diskGB" bson:"diskGB"`
	InstanceType string `json:"instanceType,omitempty" bson:"instanceType,omitempty"`
}

type Endpoints struct {
	RPC  string `json:"rpc,omitempty" bson:"rpc,omitempty"`
	REST string `json:"rest,omitempty" bson:"rest,omitempty"`
	GRPC string `json:"grpc,omitempty" bson:"grpc,omitempty"`
}

// Deployment carries at most one provider block; it must match Provider.
type Deployment struct {
	Provider     Provider            `json:"provider,omitempty" bson:"provider,omitempty"`
	Region       string              `json:"region,omitempty" bson:"region,omitempty"`
	Resources    Resources           `json:"resources" bson:"resources"`
	Endpoints    Endpoints           `json:"endpoints" bson:"endpoints"`
	AWS          *AWSConfig          `json:"aws,omitempty" bson:"aws,omitempty"`
	GCP          *GCPConfig          `json:"gcp,omitempty" bson:"gcp,omitempty"`
	Azure        *AzureConfig        `json:"azure,omitempty" bson:"azure,omitempty"`
	DigitalOcean *DigitalOceanConfig `json:"digitalocean,omitempty" bson:"digitalocean,omitempty"`
	Local        *LocalConfig        `json:"local,omitempty" bson:"local,omitempty"`
}

type AWSConfig struct {
	AccountID    string `json:"accountId,omitempty" bson:"accountId,omitempty"`
	VPCID        string `json:"vpcId,omitempty" bson:"vpcId,omitempty"`
	SubnetID     string `json:"subnetId,omitempty" bson:"subnetId,omitempty"`
	KeyPairName  string `json:"keyPairName,omitempty" bson:"keyPairName,omitempty"`
	InstanceType string `json:"instanceType,omitempty" bson:"instanceType,omitempty"`
}

type GCPConfig struct {
	ProjectID   string `json:"projectId,omitempty" bson:"projectId,omitempty"`
	Zone        string `json:"zone,omitempty" bson:"zone,omitempty"`
	Network     string `json:"network,omitempty" bson:"network,omitempty"`
	MachineType string `json:"machineType,omitempty" bson:"machineType,omitempty"`
}

type AzureConfig struct {
	SubscriptionID string `json:"subscriptionId,omitempty" bson:"subscriptionId,omitempty"`
	ResourceGroup  string `json:"resourceGroup,omitempty" bson:"resourceGroup,omitempty"`
	VMSize         string `json:"vmSize,omitempty" bson:"vmSize,omitempty"`
}

type DigitalOceanConfig struct {
	ProjectID   string `json:"projectId,omitempty" bson:"projectId,omitempty"`
	DropletSize string `json:"dropletSize,omitempty" bson:"dropletSize,omitempty"`
	VPCUUID     string `json:"vpcUuid,omitempty" bson:"vpcUuid,omitempty"`
}

type LocalConfig struct {
	DataDir  string `json:"dataDir,omitempty" bson:"dataDir,omitempty"`
	BasePort int    `json:"basePort,omitempty" bson:"basePort,omitempty"`
}

type SystemLog struct {
	ID         string          `json:"id" bson:"_id"`
	Level      LogLevel        `json:"level" bson:"level"`
	Source     string          `json:"source" bson:"source"`
	Message    string          `json:"message" bson:"message"`
	Details    json.RawMessage `json:"details,omitempty" bson:"details,omitempty"`
	UserID     string          `json:"userId,omitempty" bson:"userId,omitempty"`
	NetworkID  string          `json:"networkId,omitempty" bson:"networkId,omitempty"`
	Timestamp  time.Time       `json:"timestamp" bson:"timestamp"`
	Resolved   bool            `json:"resolved" bson:"resolved"`
	ResolvedBy string          `json:"resolvedBy,omitempty" bson:"resolvedBy,omitempty"`
	ResolvedAt *time.Time      `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	Actions    []LogAction     `json:"actions" bson:"actions"`
}

type LogAction struct {
	Action    string    `json:"action" bson:"action"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	UserID    string    `json:"userId,omitempty" bson:"userId,omitempty"`
	Result    string    `json:"result,omitempty" bson:"result,omitempty"`
}
