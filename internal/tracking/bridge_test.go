package tracking

import (
	"sync"
	"testing"
)

func TestFrameLen(t *testing.T) {
	tests := []struct {
		names   int
		weights int
		want    int
	}{
		{0, 0, 0},
		{3, 3, 3},
		{5, 2, 2},
		{2, 5, 2},
	}
	for _, tt := range tests {
		f := Frame{Names: make([]string, tt.names), Weights: make([]float32, tt.weights)}
		if got := f.Len(); got != tt.want {
			t.Errorf("Len() with %d names, %d weights = %d, want %d", tt.names, tt.weights, got, tt.want)
		}
	}
}

func TestNewBridge(t *testing.T) {
	f := NewBridge().Snapshot()
	if f.Matrix != IdentityMatrix {
		t.Errorf("initial matrix = %v, want identity", f.Matrix)
	}
	if f.Len() != 0 || f.Seq != 0 || f.Mesh != "" {
		t.Errorf("initial frame = %+v, want empty", f)
	}
}

func TestBridgeCopiesInput(t *testing.T) {
	b := NewBridge()
	names := []string{"jawOpen", "blinkL"}
	weights := []float32{0.25, 0.75}
	var m [16]float32
	m[0] = 2

	b.SetNames(names)
	b.SetValues(weights, m)
	names[0] = "changed"
	weights[0] = 9

	f := b.Snapshot()
	if f.Names[0] != "jawOpen" || f.Weights[0] != 0.25 {
		t.Errorf("bridge shares caller slices: %+v", f)
	}
	if f.Matrix[0] != 2 || f.Seq != 1 {
		t.Errorf("matrix[0] = %v seq = %d, want 2 1", f.Matrix[0], f.Seq)
	}
}

func TestBridgeSeq(t *testing.T) {
	b := NewBridge()
	b.SetNames([]string{"a"})
	b.SetMesh("head")
	if got := b.Snapshot().Seq; got != 0 {
		t.Errorf("seq after names and mesh = %d, want 0", got)
	}
	for i := 0; i < 3; i++ {
		b.SetValues([]float32{float32(i)}, IdentityMatrix)
	}
	f := b.Snapshot()
	if f.Seq != 3 || f.Weights[0] != 2 || f.Mesh != "head" {
		t.Errorf("frame = %+v, want seq 3 with last weights", f)
	}
}

func TestBridgeConcurrent(t *testing.T) {
	b := NewBridge()
	b.SetNames([]string{"a", "b"})

	const writers, writes = 4, 100
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				v := float32(w)
				b.SetValues([]float32{v, v}, IdentityMatrix)
			}
		}(w)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < writes; i++ {
			f := b.Snapshot()
			if len(f.Weights) == 2 && f.Weights[0] != f.Weights[1] {
				t.Errorf("torn snapshot: %v", f.Weights)
				return
			}
		}
	}()
	wg.Wait()
	<-done

	if got := b.Snapshot().Seq; got != writers*writes {
		t.Errorf("seq = %d, want %d", got, writers*writes)
	}
}

func TestSnapshotOwnsSlices(t *testing.T) {
	b := NewBridge()
	b.SetNames([]string{"jawOpen"})
	b.SetValues([]float32{0.5}, IdentityMatrix)

	f := b.Snapshot()
	f.Names[0] = "changed"
	f.Weights[0] = 9

	again := b.Snapshot()
	if again.Names[0] != "jawOpen" || again.Weights[0] != 0.5 {
		t.Errorf("snapshot shares bridge slices: %+v", again)
	}
}
