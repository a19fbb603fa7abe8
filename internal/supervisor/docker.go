package supervisor

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

type containerAPI interface {
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerRestart(ctx context.Context, containerID string, options container.StopOptions) error
}

// Docker maps logical services to containers on a Docker Engine.
type Docker struct {
	api        containerAPI
	containers map[string]string
}

// NewDocker connects to host (or DOCKER_HOST semantics when empty). Services
// without a container name use the service name.
func NewDocker(host string, services map[string]ServiceSpec) (*Docker, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return newDocker(cli, services), nil
}

func newDocker(api containerAPI, services map[string]ServiceSpec) *Docker {
	containers := map[string]string{Frontend: Frontend, Backend: Backend}
	for name, spec := range services {
		if spec.Container != "" {
			containers[name] = spec.Container
		}
	}
	return &Docker{api: api, containers: containers}
}

func (d *Docker) Services() []string {
	return []string{Backend, Frontend}
}

func (d *Docker) container(name string) (string, error) {
	c, ok := d.containers[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownService, name)
	}
	return c, nil
}

func (d *Docker) Status(ctx context.Context, name string) (ServiceStatus, error) {
	c, err := d.container(name)
	if err != nil {
		return ServiceStatus{Name: name}, err
	}
	st := ServiceStatus{Name: name, Managed: true}
	info, err := d.api.ContainerInspect(ctx, c)
	if err != nil {
		return st, fmt.Errorf("inspect %s: %w", c, err)
	}
	if info.ContainerJSONBase != nil && info.State != nil {
		st.Running = info.State.Running
		st.Detail = string(info.State.Status)
		if info.State.Pid > 0 {
			st.PIDs = []int{info.State.Pid}
		}
	}
	return st, nil
}

func (d *Docker) Restart(ctx context.Context, name string) error {
	c, err := d.container(name)
	if err != nil {
		return err
	}
	if err := d.api.ContainerRestart(ctx, c, container.StopOptions{}); err != nil {
		return fmt.Errorf("restart %s: %w", c, err)
	}
	return nil
}
