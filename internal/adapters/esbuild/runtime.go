package esbuild

import (
	"embed"
	"strings"
)

// RuntimeNamespace is the esbuild namespace serving the embedded runtime modules.
const RuntimeNamespace = "viewc-runtime"

//go:embed runtime/*.js
var runtimeFS embed.FS

var runtimeFiles = map[string]string{
	"viewc":          "runtime/index.js",
	"viewc/internal": "runtime/internal.js",
	"viewc/store":    "runtime/store.js",
}

// runtimeSource returns the embedded source for a runtime import path.
func runtimeSource(path string) (string, bool) {
	file, ok := runtimeFiles[strings.TrimSuffix(path, "/")]
	if !ok {
		return "", false
	}
	data, err := runtimeFS.ReadFile(file)
	if err != nil {
		return "", false
	}
	return string(data), true
}
