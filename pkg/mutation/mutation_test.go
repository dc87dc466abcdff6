package mutation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mutation
		wantErr bool
	}{
		{
			name:  "simple",
			input: "L45G",
			want:  Mutation{WildType: 'L', Position: 45, Substitution: 'G'},
		},
		{
			name:  "multi digit position",
			input: "A1234V",
			want:  Mutation{WildType: 'A', Position: 1234, Substitution: 'V'},
		},
		{
			name:  "lower case residues",
			input: "l45g",
			want:  Mutation{WildType: 'L', Position: 45, Substitution: 'G'},
		},
		{
			name:  "nonstandard symbols kept for the validator",
			input: "X9B",
			want:  Mutation{WildType: 'X', Position: 9, Substitution: 'B'},
		},
		{name: "too short", input: "L4", wantErr: true},
		{name: "missing position", input: "LXG", wantErr: true},
		{name: "zero position", input: "L0G", wantErr: true},
		{name: "negative position", input: "L-4G", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	m, err := Parse("W101F")
	require.NoError(t, err)
	assert.Equal(t, "W101F", m.String())
}

func TestShift(t *testing.T) {
	m := Mutation{WildType: 'L', Position: 45, Substitution: 'G'}

	assert.Equal(t, 43, m.Shift(-2).Position)
	assert.Equal(t, 46, m.Shift(1).Position)
	// Zero delta returns an identical mutation.
	assert.Equal(t, m, m.Shift(0))
	// The receiver stays untouched.
	assert.Equal(t, 45, m.Position)
}

func TestStandardResidues(t *testing.T) {
	assert.True(t, Mutation{WildType: 'L', Position: 1, Substitution: 'G'}.StandardResidues())
	assert.False(t, Mutation{WildType: 'X', Position: 1, Substitution: 'G'}.StandardResidues())
	assert.False(t, Mutation{WildType: 'L', Position: 1, Substitution: 'B'}.StandardResidues())
}

func TestMatches(t *testing.T) {
	seq := "MKLAVT"

	assert.True(t, Mutation{WildType: 'L', Position: 3, Substitution: 'G'}.Matches(seq))
	assert.False(t, Mutation{WildType: 'A', Position: 3, Substitution: 'G'}.Matches(seq))
	// Out-of-range positions never match.
	assert.False(t, Mutation{WildType: 'T', Position: 7, Substitution: 'G'}.Matches(seq))
	assert.False(t, Mutation{WildType: 'M', Position: 0, Substitution: 'G'}.Matches(seq))
}
