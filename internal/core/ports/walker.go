package ports

import "iter"

// Walker enumerates files below a directory.
//
//go:generate go run go.uber.org/mock/mockgen -source=walker.go -destination=mocks/mock_walker.go -package=mocks
type Walker interface {
	// WalkFiles yields file paths under root, skipping directories matching ignores.
	WalkFiles(root string, ignores []string) iter.Seq[string]
}
