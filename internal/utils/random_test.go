package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRandIsReproducible(t *testing.T) {
	a := NewRand(42)
	b := NewRand(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestDeriveRandStreamsDiffer(t *testing.T) {
	first := DeriveRand(7, 0)
	second := DeriveRand(7, 1)
	again := DeriveRand(7, 0)

	same := 0
	for i := 0; i < 100; i++ {
		x := first.Uint64()
		if x == second.Uint64() {
			same++
		}
		assert.Equal(t, x, again.Uint64())
	}
	assert.Less(t, same, 100)
}
