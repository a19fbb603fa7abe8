package supervisor

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var errNoFile = errors.New("services file not found")

// File is the services.yaml layout:
//
//	services:
//	  frontend:
//	    process: node
//	    stop: pkill -f "vite"
//	    start: cd /srv/frontend && npm run dev
//	    container: cosmos-frontend
type File struct {
	Services map[string]ServiceSpec `yaml:"services"`
}

type ServiceSpec struct {
	// Process is matched against /proc/<pid>/comm and the first argv entry.
	Process   string `yaml:"process"`
	Stop      string `yaml:"stop"`
	Start     string `yaml:"start"`
	Container string `yaml:"container"`
}

func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errNoFile, path)
		}
		return nil, fmt.Errorf("failed to read services file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse services file: %w", err)
	}
	for name := range f.Services {
		if _, err := Expand(name); err != nil || name == All {
			return nil, fmt.Errorf("services file: %w: %q", ErrUnknownService, name)
		}
	}
	return &f, nil
}

func sortedNames(services map[string]ServiceSpec) []string {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
