package guidelines

import (
	"sync"
	"testing"
)

func TestStore_AppendAndClear(t *testing.T) {
	s := NewStore()

	if got := s.Get(); got != "" {
		t.Errorf("fresh store = %q", got)
	}

	s.AppendText("Always cite the source page.")
	s.AppendText("  ") // ignored
	s.AppendText("Quote amounts with currency.")

	want := "Always cite the source page.\n\nQuote amounts with currency."
	if got := s.Get(); got != want {
		t.Errorf("Get = %q, want %q", got, want)
	}

	s.Clear()
	if got := s.Get(); got != "" {
		t.Errorf("after clear = %q", got)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendText("rule")
			s.Get()
		}()
	}
	wg.Wait()
}
