package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/engine/compiler"
	"go.trai.ch/zerr"
)

func TestValidate_ReturnsSingleChunk(t *testing.T) {
	sm := &domain.SourceMap{JSON: []byte(`{}`)}
	out := domain.Output{Items: []domain.OutputItem{{Kind: domain.KindChunk, Code: "x", Map: sm}}}

	chunk, err := compiler.Validate(widget, out)
	require.NoError(t, err)
	assert.Equal(t, "x", chunk.Code)
	assert.Same(t, sm, chunk.Map)
}

func TestValidate_AttachesMetadata(t *testing.T) {
	_, err := compiler.Validate(widget, domain.Output{Items: make([]domain.OutputItem, 3)})
	require.Error(t, err)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	meta := zErr.Metadata()
	assert.Equal(t, domain.CodeInvalidLength, meta["code"])
	assert.Equal(t, widget, meta["filename"])
	assert.Equal(t, 3, meta["count"])
}

func TestErrorCode_EmptyForForeignErrors(t *testing.T) {
	assert.Empty(t, domain.ErrorCode(assert.AnError))
	assert.Empty(t, domain.ErrorCode(nil))
	assert.Empty(t, domain.ErrorCode(domain.ErrInvalidOutputLength))
}

func widgetKey(hydratable bool) domain.CacheKey {
	return domain.CacheKey{Filename: widget, Hydratable: hydratable}
}
