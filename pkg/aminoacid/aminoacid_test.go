package aminoacid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	aa, ok := Lookup('A')
	require.True(t, ok)
	assert.Equal(t, "ALA", aa.ThreeLetter)
	assert.Equal(t, NonPolar, aa.Polarity)
	assert.Equal(t, Uncharged, aa.Charge)

	// Lower case resolves to the same residue.
	lower, ok := Lookup('a')
	require.True(t, ok)
	assert.Equal(t, aa, lower)

	_, ok = Lookup('B')
	assert.False(t, ok)
}

func TestFromThreeLetter(t *testing.T) {
	aa, ok := FromThreeLetter("His")
	require.True(t, ok)
	assert.Equal(t, byte('H'), aa.Code)
	assert.Equal(t, Basic, aa.Chemical)

	_, ok = FromThreeLetter("XYZ")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	aa, err := Parse('W')
	require.NoError(t, err)
	assert.Equal(t, "TRP", aa.ThreeLetter)

	_, err = Parse('Z')
	assert.Error(t, err)
}

func TestIsStandard(t *testing.T) {
	assert.True(t, IsStandard('G'))
	assert.True(t, IsStandard('g'))
	assert.False(t, IsStandard('X'))
	assert.False(t, IsStandard('1'))
}

func TestTableIsComplete(t *testing.T) {
	all := All()
	require.Len(t, all, 20)

	seen := make(map[byte]bool)
	for _, aa := range all {
		assert.False(t, seen[aa.Code], "duplicate residue %c", aa.Code)
		seen[aa.Code] = true
		assert.Len(t, aa.ThreeLetter, 3)
		assert.NotEmpty(t, aa.Polarity)
		assert.NotEmpty(t, aa.Charge)
		assert.NotEmpty(t, aa.Chemical)
		assert.NotEmpty(t, aa.Volume)
		assert.NotEmpty(t, aa.Hydropathy)
	}
}
