package compiler

import (
	"sync"

	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
)

// Installer enables source map support once per compiler.
// The flag is never reset, not even when the cache is cleared.
type Installer struct {
	registrar ports.SourceMapRegistrar
	mu        sync.Mutex
	installed bool
}

// NewInstaller creates an installer delegating to registrar.
func NewInstaller(registrar ports.SourceMapRegistrar) *Installer {
	return &Installer{registrar: registrar}
}

// EnsureInstalled registers source map support on first call and is a no-op afterwards.
func (i *Installer) EnsureInstalled() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.installed {
		return
	}
	i.installed = true
	i.registrar.Register(domain.SourceMapSupport{
		HandleUncaughtExceptions: false,
		Environment:              "goja",
	})
}

// Installed reports whether support has been registered.
func (i *Installer) Installed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.installed
}
