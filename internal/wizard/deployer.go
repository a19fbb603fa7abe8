package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/repository"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/logger"
)

// Phases of a simulated deployment, in order. Nothing is provisioned.
var Phases = []string{
	"validate",
	"provision_infrastructure",
	"configure_nodes",
	"setup_validators",
	"initialize_chain",
}

type DeployState string

const (
	DeployRunning   DeployState = "running"
	DeployCompleted DeployState = "completed"
	DeployFailed    DeployState = "failed"
)

type Progress struct {
	NetworkID  string      `json:"networkId"`
	Phase      string      `json:"phase"`
	PhaseIndex int         `json:"phaseIndex"`
	Percent    float64     `json:"percent"`
	State      DeployState `json:"state"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
}

// NetworkStore is the part of the repository the wizard writes through.
type NetworkStore interface {
	CreateNetwork(ctx context.Context, network *models.Network) error
	GetNetwork(ctx context.Context, id string) (*models.Network, error)
	UpdateNetwork(ctx context.Context, network *models.Network) error
	CreateLog(ctx context.Context, log *models.SystemLog) error
}

// Observer is notified when a deployment run ends.
type Observer interface {
	DeploymentFinished(state string, took time.Duration)
}

// Deployer walks networks through the deployment phases on a timer.
type Deployer struct {
	store    NetworkStore
	logger   *logger.Logger
	interval time.Duration
	observer Observer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.RWMutex
	runs map[string]*Progress
}

func NewDeployer(store NetworkStore, interval time.Duration, log *logger.Logger) *Deployer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Deployer{
		store:    store,
		logger:   log,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		runs:     map[string]*Progress{},
	}
}

func (d *Deployer) SetObserver(o Observer) {
	d.observer = o
}

// Start begins a run for networkID. A run already in progress is left alone.
func (d *Deployer) Start(networkID string) Progress {
	d.mu.Lock()
	if p, ok := d.runs[networkID]; ok && p.State == DeployRunning {
		snapshot := *p
		d.mu.Unlock()
		return snapshot
	}
	p := &Progress{
		NetworkID: networkID,
		Phase:     Phases[0],
		State:     DeployRunning,
		StartedAt: time.Now().UTC(),
	}
	d.runs[networkID] = p
	snapshot := *p
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run(networkID)
	return snapshot
}

// Progress returns a copy of the latest state of a run.
func (d *Deployer) Progress(networkID string) (Progress, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.runs[networkID]
	if !ok {
		return Progress{}, false
	}
	return *p, true
}

// Shutdown stops all runs and waits for them to exit.
func (d *Deployer) Shutdown() {
	d.cancel()
	d.wg.Wait()
}

// Wait blocks until every started run has ended.
func (d *Deployer) Wait() {
	d.wg.Wait()
}

func (d *Deployer) run(networkID string) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for i := range Phases {
		select {
		case <-d.ctx.Done():
			d.finish(networkID, DeployFailed, "deployment cancelled: server shutting down")
			return
		case <-ticker.C:
		}

		if _, err := d.store.GetNetwork(d.ctx, networkID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				d.finish(networkID, DeployFailed, "network no longer exists")
			} else {
				d.finish(networkID, DeployFailed, err.Error())
			}
			return
		}

		d.mu.Lock()
		p := d.runs[networkID]
		p.Percent = float64(i+1) / float64(len(Phases)) * 100
		if i+1 < len(Phases) {
			p.PhaseIndex = i + 1
			p.Phase = Phases[i+1]
		}
		d.mu.Unlock()
		d.logger.Debug("Deployment phase completed", "network_id", networkID, "phase", Phases[i])
	}

	if err := d.activate(networkID); err != nil {
		d.finish(networkID, DeployFailed, err.Error())
		return
	}
	d.finish(networkID, DeployCompleted, "")
}

// activate moves the network to active and records it.
func (d *Deployer) activate(networkID string) error {
	ctx := d.ctx
	network, err := d.store.GetNetwork(ctx, networkID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errors.New("network no longer exists")
		}
		return err
	}
	if network.Status != models.StatusDeploying {
		return fmt.Errorf("network status changed to %s during deployment", network.Status)
	}

	now := time.Now().UTC()
	network.SetStatus(models.StatusActive, now)
	network.Deployment.Endpoints = simulatedEndpoints(network)
	for i := range network.Validators {
		network.Validators[i].Status = models.ValidatorActive
	}
	if err := d.store.UpdateNetwork(ctx, network); err != nil {
		return fmt.Errorf("failed to activate network: %w", err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"chainId":   network.ChainID,
		"nodeCount": network.NodeCount,
		"phases":    Phases,
	})
	entry := &models.SystemLog{
		Level:     models.LevelInfo,
		Source:    "deployment",
		Message:   fmt.Sprintf("Network %s deployed successfully", network.Name),
		Details:   details,
		NetworkID: network.ID,
		Timestamp: now,
	}
	if err := d.store.CreateLog(ctx, entry); err != nil {
		d.logger.Warn("Failed to write deployment log", "network_id", networkID, "error", err)
	}
	return nil
}

func (d *Deployer) finish(networkID string, state DeployState, reason string) {
	now := time.Now().UTC()
	d.mu.Lock()
	p := d.runs[networkID]
	p.State = state
	p.Error = reason
	p.FinishedAt = &now
	if state == DeployCompleted {
		p.Percent = 100
	}
	took := now.Sub(p.StartedAt)
	d.mu.Unlock()

	if state == DeployFailed {
		d.logger.Warn("Deployment failed", "network_id", networkID, "reason", reason)
	} else {
		d.logger.Info("Deployment completed", "network_id", networkID, "duration", took.String())
	}
	if d.observer != nil {
		d.observer.DeploymentFinished(string(state), took)
	}
}

func simulatedEndpoints(n *models.Network) models.Endpoints {
	host := n.ChainID + "-node-0"
	if n.Deployment.Provider == models.ProviderLocal || n.Deployment.Provider == "" {
		host = "localhost"
	}
	return models.Endpoints{
		RPC:  fmt.Sprintf("http://%s:26657", host),
		REST: fmt.Sprintf("http://%s:1317", host),
		GRPC: fmt.Sprintf("%s:9090", host),
	}
}
