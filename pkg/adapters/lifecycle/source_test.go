package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mdninja/pkg/adapters/lifecycle"
	"github.com/aretw0/mdninja/pkg/core"
)

func TestSource_BridgesBusEvents(t *testing.T) {
	bus := core.NewBus(nil)
	src := lifecycle.NewSource(bus, "supervisor", core.KindPageSaved)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, src.Start(ctx))

	bus.Emit(core.EscapePressed{}) // not forwarded
	bus.Emit(core.PageSaved{Name: "index.md"})

	select {
	case e := <-src.Events():
		saved, ok := e.(core.PageSaved)
		require.True(t, ok, "got %T", e)
		assert.Equal(t, "index.md", saved.Name)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSource_StopsWithContext(t *testing.T) {
	bus := core.NewBus(nil)
	src := lifecycle.NewSource(bus, "supervisor")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, src.Start(ctx))
	assert.Equal(t, []string{"supervisor"}, bus.Keys(core.KindSaveShortcut))

	cancel()
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok, "channel closes on cancel")
	case <-time.After(time.Second):
		t.Fatal("source did not stop")
	}
	assert.Eventually(t, func() bool {
		return len(bus.Keys(core.KindSaveShortcut)) == 0
	}, time.Second, 10*time.Millisecond)
}
