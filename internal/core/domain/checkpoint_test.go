package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckpoints_GetSet(t *testing.T) {
	var empty Checkpoints
	assert.Equal(t, Cursor(0), empty.Get("ethereum"))

	cp := Checkpoints{}
	cp.Set("ethereum", 100)
	assert.Equal(t, Cursor(100), cp.Get("ethereum"))
	assert.Equal(t, Cursor(0), cp.Get("gnosis_chain"))
}

func TestCheckpoints_Merge(t *testing.T) {
	cp := Checkpoints{"ethereum": 1, "proposals:yam.eth": 5}
	cp.Merge(Checkpoints{"ethereum": 10, "gnosis_chain": 3})

	assert.Equal(t, Checkpoints{"ethereum": 10, "gnosis_chain": 3, "proposals:yam.eth": 5}, cp)
}

func TestCheckpoints_Clone(t *testing.T) {
	cp := Checkpoints{"ethereum": 1}
	clone := cp.Clone()
	clone.Set("ethereum", 2)

	assert.Equal(t, Cursor(1), cp.Get("ethereum"))
	assert.Equal(t, []string{"ethereum"}, clone.Names())
}

func TestNextCursor(t *testing.T) {
	t.Run("max of new records", func(t *testing.T) {
		c := &Collection{Records: []FlatRecord{{}, {}}, MaxCursor: 500}
		assert.Equal(t, Cursor(500), NextCursor(100, c))
	})

	t.Run("empty collection carries previous forward", func(t *testing.T) {
		assert.Equal(t, Cursor(100), NextCursor(100, &Collection{}))
		assert.Equal(t, Cursor(100), NextCursor(100, nil))
	})

	t.Run("never moves backwards", func(t *testing.T) {
		c := &Collection{Records: []FlatRecord{{}}, MaxCursor: 50}
		assert.Equal(t, Cursor(100), NextCursor(100, c))
	})
}
