package utils

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) emit(value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.values))
	copy(out, r.values)
	return out
}

func TestDebouncerEmitsOnlyFinalValue(t *testing.T) {
	rec := &recorder{}
	debouncer := NewDebouncer(20*time.Millisecond, rec.emit)
	defer debouncer.Stop()

	debouncer.Set("g")
	debouncer.Set("gr")
	debouncer.Set("gra")
	debouncer.Set("graça")

	require.Eventually(t, func() bool {
		values := rec.snapshot()
		return len(values) == 1 && values[0] == "graça"
	}, time.Second, 5*time.Millisecond)

	// nothing else may arrive later
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []string{"graça"}, rec.snapshot())
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	rec := &recorder{}
	debouncer := NewDebouncer(20*time.Millisecond, rec.emit)

	debouncer.Set("descartado")
	debouncer.Stop()

	time.Sleep(60 * time.Millisecond)
	require.Empty(t, rec.snapshot())

	// Set after Stop is ignored
	debouncer.Set("tarde demais")
	time.Sleep(60 * time.Millisecond)
	require.Empty(t, rec.snapshot())
}

func TestDebouncerFlushEmitsImmediately(t *testing.T) {
	rec := &recorder{}
	debouncer := NewDebouncer(time.Hour, rec.emit)
	defer debouncer.Stop()

	debouncer.Set("pendente")
	debouncer.Flush("imediato")

	require.Equal(t, []string{"imediato"}, rec.snapshot())
}

func TestDebouncerDefaultsDelay(t *testing.T) {
	debouncer := NewDebouncer[string](0, func(string) {})
	defer debouncer.Stop()
	require.Equal(t, DefaultDebounce, debouncer.delay)
}
