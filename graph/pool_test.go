package graph

import "testing"

func TestDefaultPoolEffectiveCapBorrowsGlobal(t *testing.T) {
	if !DefaultPool.IsDefault() {
		t.Fatal("DefaultPool.IsDefault() = false")
	}
	if got := DefaultPool.effectiveCap(5); got != 5 {
		t.Errorf("effectiveCap(5) = %d, want 5", got)
	}
}

func TestNewPoolEffectiveCapIgnoresGlobal(t *testing.T) {
	p := NewPool(2)
	if p.IsDefault() {
		t.Fatal("NewPool(2).IsDefault() = true")
	}
	if got := p.effectiveCap(10); got != 2 {
		t.Errorf("effectiveCap(10) = %d, want 2 (pool cap wins)", got)
	}
}

func TestPoolEqual(t *testing.T) {
	p := NewPool(1)
	if !p.Equal(p) {
		t.Error("p.Equal(p) = false")
	}
	if p.Equal(NewPool(1)) {
		t.Error("two distinct NewPool(1) calls compared equal")
	}
	if !DefaultPool.Equal(DefaultPool) {
		t.Error("DefaultPool.Equal(DefaultPool) = false")
	}
}
