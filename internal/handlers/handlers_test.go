package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/hostinfo"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/metrics"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/middleware"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/repository"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/supervisor"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/wizard"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/logger"
)

const strongPassword = "Str0ng!Pass"

type fakeSupervisor struct {
	mu        sync.Mutex
	restarted []string
	fail      map[string]error
}

func (f *fakeSupervisor) Services() []string { return []string{supervisor.Frontend, supervisor.Backend} }

func (f *fakeSupervisor) Status(_ context.Context, name string) (supervisor.ServiceStatus, error) {
	return supervisor.ServiceStatus{Name: name, Managed: true, Running: true, PIDs: []int{100}}, nil
}

func (f *fakeSupervisor) Restart(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarted = append(f.restarted, name)
	return f.fail[name]
}

type fakeHost struct{}

func (fakeHost) Read(context.Context) (hostinfo.Snapshot, error) {
	return hostinfo.Snapshot{Hostname: "test-host", CPU: hostinfo.CPU{Cores: 4}}, nil
}

type testServer struct {
	handler http.Handler
	repo    repository.Repository
	sup     *fakeSupervisor
}

func newTestServer(t *testing.T, opts RouterOptions, sup supervisor.Supervisor) *testServer {
	t.Helper()
	log := logger.Discard()
	repo, err := repository.Open(context.Background(), "bolt://"+filepath.Join(t.TempDir(), "api.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	deployer := wizard.NewDeployer(repo, 5*time.Millisecond, log)
	t.Cleanup(deployer.Shutdown)

	fake, _ := sup.(*fakeSupervisor)
	h := New(Deps{
		Repo:       repo,
		Wizard:     wizard.NewService(wizard.NewMemoryStore(time.Hour), repo, deployer, log),
		Supervisor: sup,
		Host:       fakeHost{},
		Metrics:    metrics.New(),
		Logger:     log,
	})
	return &testServer{handler: h.Router(opts), repo: repo, sup: fake}
}

func newServer(t *testing.T) *testServer {
	return newTestServer(t, RouterOptions{}, &fakeSupervisor{})
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func (s *testServer) createUser(t *testing.T, name, email string) models.User {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/users", map[string]interface{}{
		"name": name, "email": email, "password": strongPassword,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var u models.User
	decodeData(t, env, &u)
	return u
}

func (s *testServer) createNetwork(t *testing.T, body map[string]interface{}) models.Network {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/networks", body)
	require.Equal(t, http.StatusCreated, code, "%s %v", env.Error, env.Details)
	var n models.Network
	decodeData(t, env, &n)
	return n
}

func TestHealthCheck(t *testing.T) {
	s := newServer(t)
	code, env := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	var data map[string]string
	decodeData(t, env, &data)
	assert.Equal(t, "connected", data["database"])
	assert.Equal(t, Version, data["version"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	s.do(t, http.MethodGet, "/health", nil)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/health"`)
}

func TestAuthRequiredWhenSecretSet(t *testing.T) {
	s := newTestServer(t, RouterOptions{JWTSecret: "s3cret"}, &fakeSupervisor{})

	code, _ := s.do(t, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)

	tok, err := middleware.GenerateToken("s3cret", "admin-1", "admin@example.com", "admin", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/wizard/drafts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var d DraftView
	decodeData(t, env, &d)
	assert.Equal(t, "admin-1", d.OwnerID)
}

func TestUsers(t *testing.T) {
	s := newServer(t)

	t.Run("required fields", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/api/users", map[string]string{"name": "Ada"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Name, email and password are required", env.Error)
	})

	t.Run("weak password", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/api/users", map[string]string{
			"name": "Ada", "email": "ada@example.com", "password": "password",
		})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	u := s.createUser(t, "Ada", "Ada@Example.com")
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.True(t, u.IsActive)

	stored, err := s.repo.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, strongPassword, stored.Password)

	t.Run("password never serialized", func(t *testing.T) {
		_, env := s.do(t, http.MethodGet, "/api/users/"+u.ID, nil)
		assert.NotContains(t, string(env.Data), "password")
	})

	t.Run("duplicate email", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/api/users", map[string]string{
			"name": "Other", "email": "ada@example.com", "password": strongPassword,
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "A user with this email already exists", env.Error)
	})

	t.Run("network count", func(t *testing.T) {
		s.createNetwork(t, map[string]interface{}{"name": "Alpha", "chainId": "alpha-1", "owner": u.ID})
		_, env := s.do(t, http.MethodGet, "/api/users/"+u.ID, nil)
		var detail UserDetail
		decodeData(t, env, &detail)
		assert.EqualValues(t, 1, detail.NetworkCount)
	})

	t.Run("patch keeps absent fields", func(t *testing.T) {
		code, env := s.do(t, http.MethodPut, "/api/users/"+u.ID, map[string]interface{}{"company": "", "role": "operator"})
		require.Equal(t, http.StatusOK, code, env.Error)
		var got models.User
		decodeData(t, env, &got)
		assert.Equal(t, "Ada", got.Name)
		assert.Equal(t, models.RoleOperator, got.Role)
	})

	t.Run("patch validates", func(t *testing.T) {
		code, env := s.do(t, http.MethodPut, "/api/users/"+u.ID, map[string]interface{}{"role": "root"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, env.Details, "role")
	})

	t.Run("filters", func(t *testing.T) {
		code, _ := s.do(t, http.MethodGet, "/api/users?role=root", nil)
		assert.Equal(t, http.StatusBadRequest, code)

		_, env := s.do(t, http.MethodGet, "/api/users?role=operator&active=true", nil)
		var users []models.User
		decodeData(t, env, &users)
		assert.Len(t, users, 1)
	})

	t.Run("reset password", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/api/users/"+u.ID+"/reset-password", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, code)

		code, _ = s.do(t, http.MethodPost, "/api/users/"+u.ID+"/reset-password", map[string]string{"newPassword": "N3w!Passw0rd"})
		require.Equal(t, http.StatusOK, code)
		after, err := s.repo.GetUser(context.Background(), u.ID)
		require.NoError(t, err)
		assert.NotEqual(t, stored.Password, after.Password)
	})

	t.Run("delete", func(t *testing.T) {
		code, _ := s.do(t, http.MethodDelete, "/api/users/"+u.ID, nil)
		assert.Equal(t, http.StatusOK, code)
		code, env := s.do(t, http.MethodGet, "/api/users/"+u.ID, nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "User not found", env.Error)
	})

	logs, err := s.repo.ListLogs(context.Background(), repository.LogFilter{Source: "users"})
	require.NoError(t, err)
	assert.Len(t, logs, 4, "create, update, reset and delete")
}

func TestNetworks(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	owner := s.createUser(t, "Grace", "grace@example.com")

	t.Run("required fields", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/api/networks", map[string]string{"name": "Alpha"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Name and chainId are required", env.Error)
	})

	t.Run("unknown owner", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/api/networks", map[string]string{"name": "Alpha", "chainId": "alpha-1", "owner": "ghost"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Owner not found", env.Error)
	})

	n := s.createNetwork(t, map[string]interface{}{
		"name": "Alpha", "chainId": "alpha-1", "owner": owner.ID, "nodeCount": 4,
		"validators": []map[string]interface{}{{"name": "val-one", "power": 10}},
	})
	assert.Equal(t, models.StatusPlanned, n.Status)
	assert.Equal(t, models.DeploymentLocal, n.DeploymentType)
	require.Len(t, n.Validators, 1)
	assert.NotEmpty(t, n.Validators[0].ID)
	assert.Equal(t, models.ValidatorInactive, n.Validators[0].Status)

	t.Run("duplicate chain id creates nothing", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, "/api/networks", map[string]string{"name": "Again", "chainId": "alpha-1"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "A network with this chain ID already exists", env.Error)
		count, err := s.repo.CountNetworks(ctx, repository.NetworkFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("owner joined", func(t *testing.T) {
		_, env := s.do(t, http.MethodGet, "/api/networks/"+n.ID, nil)
		var view struct {
			Owner *OwnerRef `json:"owner"`
		}
		decodeData(t, env, &view)
		require.NotNil(t, view.Owner)
		assert.Equal(t, "Grace", view.Owner.Name)
	})

	t.Run("status transitions", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPut, "/api/networks/"+n.ID+"/status", map[string]string{"status": "exploded"})
		assert.Equal(t, http.StatusBadRequest, code)

		code, env := s.do(t, http.MethodPut, "/api/networks/"+n.ID+"/status", map[string]string{"status": "active"})
		require.Equal(t, http.StatusOK, code)
		var first models.Network
		decodeData(t, env, &first)
		require.NotNil(t, first.DeployedAt)
		require.NotNil(t, first.LastActiveAt)

		s.do(t, http.MethodPut, "/api/networks/"+n.ID+"/status", map[string]string{"status": "stopped"})
		time.Sleep(5 * time.Millisecond)
		_, env = s.do(t, http.MethodPut, "/api/networks/"+n.ID+"/status", map[string]string{"status": "active"})
		var second models.Network
		decodeData(t, env, &second)
		assert.True(t, first.DeployedAt.Equal(*second.DeployedAt))
		assert.True(t, second.LastActiveAt.After(*first.LastActiveAt))

		logs, err := s.repo.ListLogs(ctx, repository.LogFilter{NetworkID: n.ID, Limit: 1})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.JSONEq(t, `{"from":"stopped","to":"active"}`, string(logs[0].Details))
	})

	t.Run("update ignores status", func(t *testing.T) {
		code, env := s.do(t, http.MethodPut, "/api/networks/"+n.ID, map[string]interface{}{"description": "updated", "status": "terminated"})
		require.Equal(t, http.StatusOK, code, env.Error)
		var got models.Network
		decodeData(t, env, &got)
		assert.Equal(t, "updated", got.Description)
		assert.Equal(t, models.StatusActive, got.Status)
	})

	t.Run("validators", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, "/api/networks/"+n.ID+"/validators", map[string]interface{}{"name": "x", "power": 0})
		assert.Equal(t, http.StatusBadRequest, code)

		code, env := s.do(t, http.MethodPost, "/api/networks/"+n.ID+"/validators", map[string]interface{}{"name": "val-two", "power": 5})
		require.Equal(t, http.StatusCreated, code)
		var got models.Network
		decodeData(t, env, &got)
		require.Len(t, got.Validators, 2)

		code, _ = s.do(t, http.MethodDelete, "/api/networks/"+n.ID+"/validators/nope", nil)
		assert.Equal(t, http.StatusNotFound, code)

		code, env = s.do(t, http.MethodDelete, "/api/networks/"+n.ID+"/validators/"+got.Validators[0].ID, nil)
		require.Equal(t, http.StatusOK, code)
		decodeData(t, env, &got)
		require.Len(t, got.Validators, 1)
		assert.Equal(t, "val-two", got.Validators[0].Name)
	})

	t.Run("stats", func(t *testing.T) {
		s.createNetwork(t, map[string]interface{}{"name": "Beta", "chainId": "beta-1", "deploymentType": "testnet", "nodeCount": 1})
		code, env := s.do(t, http.MethodGet, "/api/networks/stats/summary", nil)
		require.Equal(t, http.StatusOK, code)
		var stats NetworkStats
		decodeData(t, env, &stats)
		assert.EqualValues(t, 2, stats.Total)
		assert.Equal(t, map[string]int64{"active": 1, "planned": 1}, stats.ByStatus)
		assert.EqualValues(t, 1, stats.ByDeploymentType["testnet"])
		assert.EqualValues(t, 1, stats.TotalValidators)
		assert.Equal(t, 2.5, stats.AverageNodeCount)
		assert.EqualValues(t, 2, stats.CreatedLast30Days)
	})

	t.Run("filters", func(t *testing.T) {
		code, _ := s.do(t, http.MethodGet, "/api/networks?status=bogus", nil)
		assert.Equal(t, http.StatusBadRequest, code)

		_, env := s.do(t, http.MethodGet, "/api/networks?deploymentType=testnet", nil)
		var list []NetworkView
		decodeData(t, env, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "Beta", list[0].Name)
		assert.Nil(t, list[0].Owner)
	})

	t.Run("dangling owner shows as null", func(t *testing.T) {
		require.NoError(t, s.repo.DeleteUser(ctx, owner.ID))
		_, env := s.do(t, http.MethodGet, "/api/networks/"+n.ID, nil)
		var view map[string]interface{}
		decodeData(t, env, &view)
		assert.Contains(t, view, "owner")
		assert.Nil(t, view["owner"])
	})

	t.Run("delete", func(t *testing.T) {
		code, _ := s.do(t, http.MethodDelete, "/api/networks/"+n.ID, nil)
		assert.Equal(t, http.StatusOK, code)
		code, env := s.do(t, http.MethodGet, "/api/networks/"+n.ID, nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "Network not found", env.Error)

		code, env = s.do(t, http.MethodGet, "/api/networks/stats/summary", nil)
		require.Equal(t, http.StatusOK, code)
		var stats NetworkStats
		decodeData(t, env, &stats)
		assert.EqualValues(t, 1, stats.Total)
		assert.Equal(t, map[string]int64{"planned": 1}, stats.ByStatus)
		assert.EqualValues(t, 0, stats.TotalValidators)
		assert.Equal(t, 1.0, stats.AverageNodeCount)
	})
}

func TestSystemLogs(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodPost, "/api/system/logs", map[string]string{"level": "info"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Message is required", env.Error)

	code, _ = s.do(t, http.MethodPost, "/api/system/logs", map[string]string{"level": "loud", "message": "x"})
	assert.Equal(t, http.StatusBadRequest, code)

	var ids []string
	for _, level := range []string{"info", "error", "error"} {
		code, env := s.do(t, http.MethodPost, "/api/system/logs", map[string]string{"level": level, "message": "disk " + level})
		require.Equal(t, http.StatusCreated, code)
		var entry models.SystemLog
		decodeData(t, env, &entry)
		assert.Equal(t, "api", entry.Source)
		ids = append(ids, entry.ID)
	}

	t.Run("paging and total", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/system/logs?level=error&limit=1", nil)
		require.Equal(t, http.StatusOK, code)
		var page LogPage
		decodeData(t, env, &page)
		assert.Len(t, page.Logs, 1)
		assert.EqualValues(t, 2, page.Total)

		code, _ = s.do(t, http.MethodGet, "/api/system/logs?limit=-1", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		code, _ = s.do(t, http.MethodGet, "/api/system/logs?resolved=maybe", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("resolve", func(t *testing.T) {
		code, env := s.do(t, http.MethodPut, "/api/system/logs/"+ids[1]+"/resolve", map[string]string{
			"resolvedBy": "ops", "action": "cleared disk", "result": "ok",
		})
		require.Equal(t, http.StatusOK, code, env.Error)
		var entry models.SystemLog
		decodeData(t, env, &entry)
		assert.True(t, entry.Resolved)
		assert.Equal(t, "ops", entry.ResolvedBy)
		assert.NotNil(t, entry.ResolvedAt)
		require.Len(t, entry.Actions, 1)
		assert.Equal(t, "cleared disk", entry.Actions[0].Action)

		code, env = s.do(t, http.MethodPut, "/api/system/logs/"+ids[1]+"/resolve", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Log entry is already resolved", env.Error)

		code, env = s.do(t, http.MethodPut, "/api/system/logs/"+ids[2]+"/resolve", map[string]string{})
		require.Equal(t, http.StatusOK, code)
		var plain models.SystemLog
		decodeData(t, env, &plain)
		assert.True(t, plain.Resolved)
		assert.Empty(t, plain.Actions)

		code, _ = s.do(t, http.MethodPut, "/api/system/logs/missing/resolve", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestSystemStatus(t *testing.T) {
	s := newServer(t)
	code, env := s.do(t, http.MethodGet, "/api/system/status", nil)
	require.Equal(t, http.StatusOK, code)

	var st SystemStatus
	decodeData(t, env, &st)
	require.NotNil(t, st.Host)
	assert.Equal(t, "test-host", st.Host.Hostname)
	assert.Equal(t, "connected", st.Database)
	require.Len(t, st.Services, 2)
	assert.True(t, st.Services[0].Running)
	assert.Equal(t, Version, st.API.Version)
}

func TestRestartService(t *testing.T) {
	t.Run("all restarts backend last", func(t *testing.T) {
		s := newServer(t)
		code, env := s.do(t, http.MethodPost, "/api/system/restart/all", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, []string{supervisor.Frontend, supervisor.Backend}, s.sup.restarted)

		var results []RestartResult
		decodeData(t, env, &results)
		assert.Len(t, results, 2)

		logs, err := s.repo.ListLogs(context.Background(), repository.LogFilter{Source: "system"})
		require.NoError(t, err)
		require.Len(t, logs, 2)
		for _, l := range logs {
			require.Len(t, l.Actions, 1)
			assert.Equal(t, "restart", l.Actions[0].Action)
			assert.Equal(t, "ok", l.Actions[0].Result)
		}
	})

	t.Run("unknown service", func(t *testing.T) {
		s := newServer(t)
		code, _ := s.do(t, http.MethodPost, "/api/system/restart/database", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("failure is logged", func(t *testing.T) {
		s := newServer(t)
		s.sup.fail = map[string]error{supervisor.Frontend: errors.New("stop frontend: exit status 1")}
		code, _ := s.do(t, http.MethodPost, "/api/system/restart/frontend", nil)
		assert.Equal(t, http.StatusInternalServerError, code)

		logs, err := s.repo.ListLogs(context.Background(), repository.LogFilter{Source: "system"})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, models.LevelError, logs[0].Level)
		assert.Equal(t, "error", logs[0].Actions[0].Result)
	})

	t.Run("all skips services without an entry", func(t *testing.T) {
		backendOnly := supervisor.NewExec(map[string]supervisor.ServiceSpec{supervisor.Backend: {Start: "true"}})
		s := newTestServer(t, RouterOptions{}, backendOnly)
		code, env := s.do(t, http.MethodPost, "/api/system/restart/all", nil)
		require.Equal(t, http.StatusOK, code, env.Error)
		var results []RestartResult
		decodeData(t, env, &results)
		require.Len(t, results, 1)
		assert.Equal(t, supervisor.Backend, results[0].Service)

		code, _ = s.do(t, http.MethodPost, "/api/system/restart/frontend", nil)
		assert.Equal(t, http.StatusNotImplemented, code)
	})

	t.Run("unmanaged", func(t *testing.T) {
		s := newTestServer(t, RouterOptions{}, supervisor.None{})
		code, env := s.do(t, http.MethodPost, "/api/system/restart/backend", nil)
		assert.Equal(t, http.StatusNotImplemented, code)
		assert.Equal(t, supervisor.ErrUnsupported.Error(), env.Error)

		code, env = s.do(t, http.MethodGet, "/api/system/status", nil)
		require.Equal(t, http.StatusOK, code)
		var st SystemStatus
		decodeData(t, env, &st)
		require.Len(t, st.Services, 2)
		assert.False(t, st.Services[0].Managed)
	})
}

func TestDashboard(t *testing.T) {
	s := newServer(t)
	u := s.createUser(t, "Linus", "linus@example.com")
	n := s.createNetwork(t, map[string]interface{}{"name": "Alpha", "chainId": "alpha-1", "owner": u.ID})
	s.do(t, http.MethodPost, "/api/system/logs", map[string]string{"level": "error", "message": "boom", "networkId": n.ID})

	t.Run("overview", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, "/api/dashboard", nil)
		require.Equal(t, http.StatusOK, code)
		var d Dashboard
		decodeData(t, env, &d)
		assert.EqualValues(t, 1, d.Counts.Users)
		assert.EqualValues(t, 1, d.Counts.Networks)
		assert.EqualValues(t, 3, d.Counts.Logs)
		assert.EqualValues(t, 1, d.NetworksByStatus["planned"])
		require.Len(t, d.RecentNetworks, 1)
		require.NotNil(t, d.RecentNetworks[0].Owner)
		assert.Equal(t, "Linus", d.RecentNetworks[0].Owner.Name)
		assert.EqualValues(t, 1, d.UnresolvedLogs["error"])
		require.NotEmpty(t, d.RecentLogs)
		assert.Equal(t, "Alpha", d.RecentLogs[0].NetworkName)
	})

	t.Run("quick stats are cached", func(t *testing.T) {
		_, env := s.do(t, http.MethodGet, "/api/dashboard/quick-stats", nil)
		var first QuickStats
		decodeData(t, env, &first)
		assert.EqualValues(t, 1, first.Users)
		assert.EqualValues(t, 1, first.UnresolvedErrors)

		s.createUser(t, "Ken", "ken@example.com")
		_, env = s.do(t, http.MethodGet, "/api/dashboard/quick-stats", nil)
		var second QuickStats
		decodeData(t, env, &second)
		assert.EqualValues(t, 1, second.Users)
	})

	t.Run("activity", func(t *testing.T) {
		code, _ := s.do(t, http.MethodGet, "/api/dashboard/activity?limit=x", nil)
		assert.Equal(t, http.StatusBadRequest, code)

		_, env := s.do(t, http.MethodGet, "/api/dashboard/activity?limit=2", nil)
		var entries []ActivityEntry
		decodeData(t, env, &entries)
		assert.Len(t, entries, 2)
	})
}

func TestWizardFlow(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodPost, "/api/wizard/drafts", nil)
	require.Equal(t, http.StatusCreated, code)
	var d DraftView
	decodeData(t, env, &d)
	require.NotEmpty(t, d.ID)
	assert.NotEmpty(t, d.Derived.GovernanceTimeline)
	base := "/api/wizard/drafts/" + d.ID

	t.Run("unknown field", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPut, base+"/field", map[string]interface{}{"path": "basicInfo.colour", "value": "red"})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("slider clamps", func(t *testing.T) {
		code, env := s.do(t, http.MethodPut, base+"/slider", map[string]interface{}{"path": "governance.quorum", "value": 150})
		require.Equal(t, http.StatusOK, code, env.Error)
		var got DraftView
		decodeData(t, env, &got)
		assert.Equal(t, 100.0, got.Config.Governance.Quorum)
	})

	t.Run("custom validators", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPut, base+"/custom-validators", map[string]bool{"enabled": true})
		require.Equal(t, http.StatusOK, code)

		code, env := s.do(t, http.MethodPut, base+"/validators", map[string]interface{}{
			"validator": map[string]interface{}{"name": "Extra", "power": 5, "maxRate": 10},
		})
		require.Equal(t, http.StatusOK, code, env.Error)
		var got DraftView
		decodeData(t, env, &got)
		assert.Len(t, got.Config.Validators.Custom, 5)
		assert.Len(t, got.Derived.VotingPower, 5)

		code, _ = s.do(t, http.MethodDelete, base+"/validators/99", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		code, _ = s.do(t, http.MethodDelete, base+"/validators/4", nil)
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("validate shows errors", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, base+"/validate", nil)
		require.Equal(t, http.StatusOK, code)
		assert.False(t, env.Success)
		var got DraftView
		decodeData(t, env, &got)
		assert.Contains(t, got.Errors, "basicInfo.chainName")
	})

	t.Run("estimate", func(t *testing.T) {
		code, env := s.do(t, http.MethodGet, base+"/estimate", nil)
		require.Equal(t, http.StatusOK, code)
		var est map[string]interface{}
		decodeData(t, env, &est)
		assert.Equal(t, "USD", est["currency"])
	})

	t.Run("submit needs confirmation", func(t *testing.T) {
		code, _ := s.do(t, http.MethodPost, base+"/submit", map[string]bool{"confirm": false})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("submit invalid", func(t *testing.T) {
		code, env := s.do(t, http.MethodPost, base+"/submit", map[string]bool{"confirm": true})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, env.Details, "basicInfo.chainName")
	})

	s.do(t, http.MethodPut, base+"/field", map[string]interface{}{"path": "basicInfo.chainName", "value": "Wizard Net"})
	s.do(t, http.MethodPut, base+"/field", map[string]interface{}{"path": "basicInfo.chainId", "value": "wizard-1"})

	code, env = s.do(t, http.MethodPost, base+"/submit", map[string]bool{"confirm": true})
	require.Equal(t, http.StatusCreated, code, "%s %v", env.Error, env.Details)
	var res SubmitResponse
	decodeData(t, env, &res)
	assert.Equal(t, models.StatusDeploying, res.Network.Status)

	assert.Eventually(t, func() bool {
		code, env := s.do(t, http.MethodGet, "/api/wizard/deployments/"+res.Network.ID, nil)
		if code != http.StatusOK {
			return false
		}
		var p wizard.Progress
		decodeData(t, env, &p)
		return p.State == wizard.DeployCompleted
	}, 5*time.Second, 10*time.Millisecond)

	code, _ = s.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodGet, "/api/wizard/deployments/unknown", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEstimateCost(t *testing.T) {
	s := newServer(t)

	code, env := s.do(t, http.MethodPost, "/api/wizard/estimate", map[string]interface{}{
		"provider": "aws", "instanceType": "medium", "diskSizeGB": 250, "nodes": 4,
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	var est map[string]interface{}
	decodeData(t, env, &est)
	assert.Equal(t, "425", est["total"])

	code, _ = s.do(t, http.MethodPost, "/api/wizard/estimate", map[string]interface{}{
		"provider": "aws", "instanceType": "huge", "diskSizeGB": 100, "nodes": 1,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/wizard/estimate", map[string]interface{}{
		"provider": "ibm", "instanceType": "small", "nodes": 1,
	})
	assert.Equal(t, http.StatusBadRequest, code)
}
