package wizard

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/repository"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/database"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/logger"
)

func newTestRepo(t *testing.T) *repository.BoltRepository {
	t.Helper()
	db, err := database.OpenBolt("bolt://" + filepath.Join(t.TempDir(), "wizard.db"))
	require.NoError(t, err)
	repo, err := repository.NewBoltRepository(db)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

type countingObserver struct {
	states chan string
}

func (o *countingObserver) DeploymentFinished(state string, _ time.Duration) {
	o.states <- state
}

func newTestService(t *testing.T, interval time.Duration) (*Service, *repository.BoltRepository, *countingObserver) {
	t.Helper()
	repo := newTestRepo(t)
	deployer := NewDeployer(repo, interval, logger.Discard())
	obs := &countingObserver{states: make(chan string, 8)}
	deployer.SetObserver(obs)
	t.Cleanup(deployer.Shutdown)
	return NewService(NewMemoryStore(time.Hour), repo, deployer, logger.Discard()), repo, obs
}

func readyDraft(t *testing.T, svc *Service, chainID string) *Draft {
	t.Helper()
	ctx := context.Background()
	d, err := svc.CreateDraft(ctx, "owner-1")
	require.NoError(t, err)
	_, err = svc.SetField(ctx, d.ID, "basicInfo.chainName", "Test Network")
	require.NoError(t, err)
	d, err = svc.SetField(ctx, d.ID, "basicInfo.chainId", chainID)
	require.NoError(t, err)
	return d
}

func TestService_DraftLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	d, err := svc.CreateDraft(ctx, "owner-1")
	require.NoError(t, err)

	_, err = svc.SetSlider(ctx, d.ID, "governance.quorum", 250)
	require.NoError(t, err)
	got, err := svc.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Config.Governance.Quorum)

	_, err = svc.ToggleCustomValidators(ctx, d.ID, true)
	require.NoError(t, err)
	got, at, err := svc.AddOrUpdateValidator(ctx, d.ID, models.ValidatorEntry{Name: "Extra", Power: 5, MaxRate: 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, at)
	assert.Len(t, got.Config.Validators.Custom, 5)

	got, err = svc.RemoveValidator(ctx, d.ID, 0)
	require.NoError(t, err)
	assert.Len(t, got.Config.Validators.Custom, 4)

	require.NoError(t, svc.DeleteDraft(ctx, d.ID))
	_, err = svc.GetDraft(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	assert.ErrorIs(t, svc.DeleteDraft(ctx, d.ID), ErrDraftNotFound)
}

func TestService_FailedMutationIsNotSaved(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	d, err := svc.CreateDraft(ctx, "")
	require.NoError(t, err)
	_, err = svc.SetField(ctx, d.ID, "governance.quorum", "lots")
	assert.ErrorIs(t, err, ErrInvalidValue)

	got, err := svc.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 33.4, got.Config.Governance.Quorum)
}

func TestService_ConcurrentEditsKeepEveryUpdate(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	d, err := svc.CreateDraft(ctx, "")
	require.NoError(t, err)

	const editors = 20
	var wg sync.WaitGroup
	for i := 0; i < editors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := models.ValidatorEntry{Name: fmt.Sprintf("Node %d", i), Power: 1, MaxRate: 10}
			_, _, err := svc.AddOrUpdateValidator(ctx, d.ID, entry, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := svc.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, got.Config.Validators.Custom, editors)
	assert.Zero(t, svc.locks.len())
}

func TestService_SubmitRequiresConfirmation(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	d := readyDraft(t, svc, "test-1")

	_, _, err := svc.Submit(context.Background(), d.ID, false, "")
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestService_SubmitRejectsInvalidDraft(t *testing.T) {
	svc, repo, _ := newTestService(t, time.Hour)
	ctx := context.Background()
	d, err := svc.CreateDraft(ctx, "")
	require.NoError(t, err)

	_, _, err = svc.Submit(ctx, d.ID, true, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Chain name is required", verr.Errors["basicInfo.chainName"])

	got, err := svc.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Errors, "basicInfo.chainId")

	n, err := repo.CountNetworks(ctx, repository.NetworkFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_SubmitDeploys(t *testing.T) {
	svc, repo, obs := newTestService(t, 5*time.Millisecond)
	ctx := context.Background()
	d := readyDraft(t, svc, "test-1")

	network, progress, err := svc.Submit(ctx, d.ID, true, "user-9")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeploying, network.Status)
	assert.Equal(t, "owner-1", network.Owner)
	assert.Equal(t, 4, network.NodeCount)
	assert.Len(t, network.Validators, 4)
	assert.NotNil(t, network.Deployment.AWS)
	assert.Equal(t, "validate", progress.Phase)
	assert.Equal(t, DeployRunning, progress.State)

	_, err = svc.GetDraft(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	select {
	case state := <-obs.states:
		assert.Equal(t, string(DeployCompleted), state)
	case <-time.After(5 * time.Second):
		t.Fatal("deployment did not finish")
	}

	p, ok := svc.Deployer().Progress(network.ID)
	require.True(t, ok)
	assert.Equal(t, DeployCompleted, p.State)
	assert.Equal(t, 100.0, p.Percent)
	assert.Equal(t, "initialize_chain", p.Phase)
	assert.NotNil(t, p.FinishedAt)

	stored, err := repo.GetNetwork(ctx, network.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)
	require.NotNil(t, stored.DeployedAt)
	assert.NotNil(t, stored.LastActiveAt)
	assert.NotEmpty(t, stored.Deployment.Endpoints.RPC)

	logs, err := repo.ListLogs(ctx, repository.LogFilter{NetworkID: network.ID})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestService_SubmitDuplicateChainID(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	first := readyDraft(t, svc, "dup-1")
	_, _, err := svc.Submit(ctx, first.ID, true, "")
	require.NoError(t, err)

	second := readyDraft(t, svc, "dup-1")
	_, _, err = svc.Submit(ctx, second.ID, true, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "basicInfo.chainId")

	_, err = svc.GetDraft(ctx, second.ID)
	assert.NoError(t, err, "rejected draft is kept")
}

func TestDeployer_NetworkRemovedMidRun(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	network := &models.Network{Name: "Gone", ChainID: "gone-1", Status: models.StatusDeploying}
	require.NoError(t, repo.CreateNetwork(ctx, network))

	deployer := NewDeployer(repo, 50*time.Millisecond, logger.Discard())
	t.Cleanup(deployer.Shutdown)
	deployer.Start(network.ID)
	require.NoError(t, repo.DeleteNetwork(ctx, network.ID))
	deployer.Wait()

	p, ok := deployer.Progress(network.ID)
	require.True(t, ok)
	assert.Equal(t, DeployFailed, p.State)
	assert.Equal(t, "network no longer exists", p.Error)
}

func TestDeployer_ShutdownCancels(t *testing.T) {
	repo := newTestRepo(t)
	network := &models.Network{Name: "Slow", ChainID: "slow-1", Status: models.StatusDeploying}
	require.NoError(t, repo.CreateNetwork(context.Background(), network))

	deployer := NewDeployer(repo, time.Hour, logger.Discard())
	deployer.Start(network.ID)
	deployer.Shutdown()

	p, _ := deployer.Progress(network.ID)
	assert.Equal(t, DeployFailed, p.State)
}

func TestBuildNetwork_ProviderBlock(t *testing.T) {
	cfg := models.DefaultNetworkConfig()
	cfg.Deployment.Provider = models.ProviderLocal
	cfg.Validators.ValidatorCount = 2

	n := BuildNetwork(cfg, "")
	assert.Equal(t, []models.Provider{models.ProviderLocal}, n.Deployment.ProviderBlocks())
	assert.Equal(t, 4, n.Deployment.Resources.CPU)
	assert.Len(t, n.Validators, 2)
	assert.Equal(t, 50.0, n.Validators[0].Power)
	assert.NotEmpty(t, n.Modules)
}
