package supervisor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/prometheus/procfs"
)

type Process struct {
	PID  int
	Name string
	Argv []string
}

// ProcessTable lists running processes.
type ProcessTable func() ([]Process, error)

// ProcTable reads the process table from /proc.
func ProcTable() ([]Process, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, err
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		comm, err := p.Comm()
		if err != nil {
			// exited between listing and reading
			continue
		}
		argv, _ := p.CmdLine()
		out = append(out, Process{PID: p.PID, Name: comm, Argv: argv})
	}
	return out, nil
}

// Exec manages services with shell commands and finds them by process name.
type Exec struct {
	services map[string]ServiceSpec
	procs    ProcessTable
}

func NewExec(services map[string]ServiceSpec) *Exec {
	return &Exec{services: services, procs: ProcTable}
}

// WithProcessTable swaps the process source.
func (e *Exec) WithProcessTable(t ProcessTable) *Exec {
	e.procs = t
	return e
}

func (e *Exec) Services() []string {
	return sortedNames(e.services)
}

func (e *Exec) spec(name string) (ServiceSpec, error) {
	spec, ok := e.services[name]
	if !ok {
		if name == Frontend || name == Backend {
			return ServiceSpec{}, fmt.Errorf("%w: %s has no entry in the services file", ErrUnsupported, name)
		}
		return ServiceSpec{}, fmt.Errorf("%w: %q", ErrUnknownService, name)
	}
	return spec, nil
}

func (e *Exec) Status(_ context.Context, name string) (ServiceStatus, error) {
	spec, err := e.spec(name)
	if err != nil {
		return ServiceStatus{Name: name}, err
	}
	st := ServiceStatus{Name: name, Managed: true}
	if spec.Process == "" {
		st.Detail = "no process name configured"
		return st, nil
	}

	procs, err := e.procs()
	if err != nil {
		return st, fmt.Errorf("failed to list processes: %w", err)
	}
	for _, p := range procs {
		if matchProcess(p, spec.Process) {
			st.PIDs = append(st.PIDs, p.PID)
		}
	}
	st.Running = len(st.PIDs) > 0
	return st, nil
}

func matchProcess(p Process, want string) bool {
	if p.Name == want {
		return true
	}
	return len(p.Argv) > 0 && filepath.Base(p.Argv[0]) == want
}

// Restart runs the stop command and waits for it, then launches the start
// command in the background. A failed stop aborts the restart.
func (e *Exec) Restart(ctx context.Context, name string) error {
	spec, err := e.spec(name)
	if err != nil {
		return err
	}

	if spec.Stop != "" {
		var out bytes.Buffer
		cmd := exec.CommandContext(ctx, "sh", "-c", spec.Stop)
		cmd.Stdout = &out
		cmd.Stderr = &out
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("stop %s: %w: %s", name, err, strings.TrimSpace(out.String()))
		}
	}

	if spec.Start == "" {
		return nil
	}
	// Detached from ctx: the service must outlive the request.
	cmd := exec.Command("sh", "-c", spec.Start)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}
