package compiler_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/viewc/internal/core/ports/mocks"
	"go.trai.ch/viewc/internal/engine/compiler"
	"go.uber.org/mock/gomock"
)

func TestInstaller_RegistersOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	registrar := mocks.NewMockSourceMapRegistrar(ctrl)
	registrar.EXPECT().Register(gomock.Any()).Times(1)

	installer := compiler.NewInstaller(registrar)
	assert.False(t, installer.Installed())

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(installer.EnsureInstalled)
	}
	wg.Wait()

	assert.True(t, installer.Installed())
}

func TestCache_ClearReplacesEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := compiler.NewCache()
	key := widgetKey(true)
	artifact := mocks.NewMockArtifact(ctrl)

	cache.Put(key, artifact)
	got, ok := cache.Get(key)
	assert.True(t, ok)
	assert.Same(t, artifact, got)

	_, ok = cache.Get(widgetKey(false))
	assert.False(t, ok)

	cache.Clear()
	_, ok = cache.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}
