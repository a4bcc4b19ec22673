package domain

import "path/filepath"

const (
	// ViewcDirName is the name of the internal workspace directory.
	ViewcDirName = ".viewc"

	// StoreDirName is the name of the bundle store directory.
	StoreDirName = "store"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "viewc.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// TemplateExtensions are the file extensions handled by the template transpiler.
var TemplateExtensions = []string{".tmpl", ".svelte"}

// DefaultViewcPath returns the default root directory for viewc metadata.
func DefaultViewcPath() string {
	return ViewcDirName
}

// DefaultStorePath returns the default path for the bundle store.
// It joins .viewc and store.
func DefaultStorePath() string {
	return filepath.Join(ViewcDirName, StoreDirName)
}

// IsTemplate reports whether path has a template extension.
func IsTemplate(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range TemplateExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
