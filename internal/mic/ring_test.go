package mic

import (
	"slices"
	"sync"
	"testing"
)

func TestRingSnapshotOrder(t *testing.T) {
	r := NewRing(5)
	r.Write([]float32{1, 2, 3})
	dst := make([]float32, 4)
	if n := r.Snapshot(dst); n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	if want := []float32{0, 1, 2, 3}; !slices.Equal(dst, want) {
		t.Fatalf("snapshot = %v, want %v", dst, want)
	}

	r.Write([]float32{4, 5, 6, 7})
	dst = make([]float32, 5)
	if n := r.Snapshot(dst); n != 5 {
		t.Fatalf("n = %d, want 5", n)
	}
	if want := []float32{3, 4, 5, 6, 7}; !slices.Equal(dst, want) {
		t.Fatalf("snapshot = %v, want %v", dst, want)
	}

	dst = make([]float32, 2)
	r.Snapshot(dst)
	if want := []float32{6, 7}; !slices.Equal(dst, want) {
		t.Fatalf("snapshot = %v, want %v", dst, want)
	}
}

func TestRingOversizedWrite(t *testing.T) {
	r := NewRing(3)
	r.Write([]float32{1})
	r.Write([]float32{2, 3, 4, 5, 6})
	dst := make([]float32, 3)
	r.Snapshot(dst)
	if want := []float32{4, 5, 6}; !slices.Equal(dst, want) {
		t.Fatalf("snapshot = %v, want %v", dst, want)
	}
	r.Write([]float32{7})
	r.Snapshot(dst)
	if want := []float32{5, 6, 7}; !slices.Equal(dst, want) {
		t.Fatalf("snapshot = %v, want %v", dst, want)
	}
}

func TestRingReset(t *testing.T) {
	r := NewRing(4)
	r.Write([]float32{1, 2, 3, 4, 5})
	r.Reset()
	dst := []float32{9, 9}
	if n := r.Snapshot(dst); n != 0 || !slices.Equal(dst, []float32{0, 0}) {
		t.Fatalf("after reset n = %d snapshot = %v", n, dst)
	}
}

func TestRingConcurrentAccess(t *testing.T) {
	r := NewRing(256)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		block := make([]float32, 64)
		for i := 0; i < 1000; i++ {
			r.Write(block)
		}
	}()
	go func() {
		defer wg.Done()
		dst := make([]float32, 128)
		for i := 0; i < 1000; i++ {
			r.Snapshot(dst)
		}
	}()
	wg.Wait()
}
