package ports

import "go.trai.ch/viewc/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load walks up from cwd to the nearest viewc.yaml and parses it.
	// A missing file yields a default config rooted at cwd.
	Load(cwd string) (*domain.ProjectConfig, error)

	// LoadFile parses the config file at path. Relative paths in it resolve against its directory.
	LoadFile(path string) (*domain.ProjectConfig, error)
}
