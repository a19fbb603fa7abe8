// Package supervisor starts, stops and probes the platform's sibling
// services by logical name.
package supervisor

import (
	"context"
	"errors"
	"fmt"
)

// Logical service names.
const (
	Frontend = "frontend"
	Backend  = "backend"
	All      = "all"
)

var (
	ErrUnsupported    = errors.New("service management is not configured")
	ErrUnknownService = errors.New("unknown service")
)

type ServiceStatus struct {
	Name    string `json:"name"`
	Managed bool   `json:"managed"`
	Running bool   `json:"running"`
	PIDs    []int  `json:"pids,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type Supervisor interface {
	Services() []string
	Status(ctx context.Context, name string) (ServiceStatus, error)
	Restart(ctx context.Context, name string) error
}

// Expand resolves a restart target into service names in restart order.
// The backend always goes last since restarting it takes down the caller.
func Expand(target string) ([]string, error) {
	switch target {
	case Frontend, Backend:
		return []string{target}, nil
	case All:
		return []string{Frontend, Backend}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownService, target)
}

// ExpandFor is Expand limited to what s manages: "all" drops services s has
// no entry for. A single named service is returned as is.
func ExpandFor(s Supervisor, target string) ([]string, error) {
	names, err := Expand(target)
	if err != nil || target != All {
		return names, err
	}
	managed := make(map[string]bool)
	for _, name := range s.Services() {
		managed[name] = true
	}
	out := names[:0:0]
	for _, name := range names {
		if managed[name] {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return names, nil
	}
	return out, nil
}

// Open builds the supervisor selected by mode. configPath names the YAML
// services file; it is required for exec and optional for docker.
func Open(mode, configPath, dockerHost string) (Supervisor, error) {
	switch mode {
	case "", "none":
		return None{}, nil
	case "exec":
		file, err := LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		return NewExec(file.Services), nil
	case "docker":
		file, err := LoadFile(configPath)
		if err != nil && !errors.Is(err, errNoFile) {
			return nil, err
		}
		var services map[string]ServiceSpec
		if file != nil {
			services = file.Services
		}
		return NewDocker(dockerHost, services)
	}
	return nil, fmt.Errorf("unsupported supervisor mode %q", mode)
}

// None is used when no process manager is configured.
type None struct{}

func (None) Services() []string { return []string{Frontend, Backend} }

func (None) Status(_ context.Context, name string) (ServiceStatus, error) {
	return ServiceStatus{Name: name}, ErrUnsupported
}

func (None) Restart(context.Context, string) error { return ErrUnsupported }
