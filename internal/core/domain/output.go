package domain

import "encoding/base64"

// OutputKind distinguishes executable chunks from auxiliary assets.
type OutputKind string

const (
	// KindChunk is an executable code unit.
	KindChunk OutputKind = "chunk"
	// KindAsset is a non-code file emitted by the bundler.
	KindAsset OutputKind = "asset"
)

// SourceMap is a generated debug mapping in JSON form.
type SourceMap struct {
	JSON []byte
}

// ToURL encodes the map as a base64 data URL.
func (m SourceMap) ToURL() string {
	return "data:application/json;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(m.JSON)
}

// OutputItem is a single file produced by the bundler.
type OutputItem struct {
	Kind     OutputKind
	FileName string

	// Code is set for chunks.
	Code string
	// Map is set for chunks when source maps were requested.
	Map *SourceMap
	// Modules lists the inputs bundled into a chunk.
	Modules []string

	// Source is set for assets.
	Source []byte
}

// Output is the ordered result of a bundling run.
type Output struct {
	Items []OutputItem
}
