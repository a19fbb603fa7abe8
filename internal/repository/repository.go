package repository

import (
	"context"
	"errors"
	"time"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, f UserFilter) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int64, error)

	// Network operations
	CreateNetwork(ctx context.Context, network *models.Network) error
	GetNetwork(ctx context.Context, id string) (*models.Network, error)
	ListNetworks(ctx context.Context, f NetworkFilter) ([]models.Network, error)
	UpdateNetwork(ctx context.Context, network *models.Network) error
	DeleteNetwork(ctx context.Context, id string) error
	CountNetworks(ctx context.Context, f NetworkFilter) (int64, error)
	CountNetworksBy(ctx context.Context, field NetworkField) (map[string]int64, error)
	ValidatorTotal(ctx context.Context) (int64, error)

	// System log operations
	CreateLog(ctx context.Context, log *models.SystemLog) error
	GetLog(ctx context.Context, id string) (*models.SystemLog, error)
	ListLogs(ctx context.Context, f LogFilter) ([]models.SystemLog, error)
	UpdateLog(ctx context.Context, log *models.SystemLog) error
	CountLogs(ctx context.Context, f LogFilter) (int64, error)
	CountLogsByLevel(ctx context.Context, resolved *bool) (map[string]int64, error)

	Ping(ctx context.Context) error
	Close() error
}

type UserFilter struct {
	Role   models.Role
	Active *bool
	// Search matches name, email or company, case-insensitively.
	Search string
}

type NetworkFilter struct {
	Status         models.NetworkStatus
	DeploymentType models.DeploymentType
	Owner          string
	CreatedSince   *time.Time
	// Limit of zero means no limit. Results are newest first.
	Limit int
}

type NetworkField string

const (
	ByStatus         NetworkField = "status"
	ByDeploymentType NetworkField = "deploymentType"
)

func (f NetworkField) Valid() bool {
	return f == ByStatus || f == ByDeploymentType
}

type LogFilter struct {
	Level     models.LogLevel
	Source    string
	Resolved  *bool
	UserID    string
	NetworkID string
	Since     *time.Time
	// Limit of zero means no limit. Results are newest first.
	Limit int
	Skip  int
}
