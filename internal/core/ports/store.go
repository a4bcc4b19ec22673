package ports

import "go.trai.ch/viewc/internal/core/domain"

// BundleStore defines the interface for persisting generated bundles.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BundleStore interface {
	// Get retrieves the bundle info for a given template file.
	// Returns nil, nil if not found.
	Get(filename string) (*domain.BundleInfo, error)

	// Put stores the generated code and its info.
	Put(info domain.BundleInfo, code []byte) (*domain.BundleInfo, error)
}

// BundleStoreFactory opens a bundle store rooted at dir.
type BundleStoreFactory func(dir string) (BundleStore, error)
