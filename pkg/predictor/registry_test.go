package predictor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loschmidt/BenchStab/pkg/dataset"
)

type stubPredictor struct {
	name  string
	input InputType
}

func (s *stubPredictor) Name() string        { return s.name }
func (s *stubPredictor) InputType() InputType { return s.input }
func (s *stubPredictor) JobBased() bool      { return false }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, p := range []*stubPredictor{
		{name: "ddgun", input: InputSequence},
		{name: "automute", input: InputPdbID},
		{name: "cupsat", input: InputPdbFile},
	} {
		require.NoError(t, r.Register(p))
	}
	return r
}

func TestRegisterAndGet(t *testing.T) {
	r := newTestRegistry(t)

	p, err := r.Get("DDGun")
	require.NoError(t, err)
	assert.Equal(t, "ddgun", p.Name())

	_, err = r.Get("unknown")
	assert.Error(t, err)

	err = r.Register(&stubPredictor{name: "DDGUN"})
	assert.Error(t, err, "names are case-insensitive")
}

func TestListIsSorted(t *testing.T) {
	r := newTestRegistry(t)
	var names []string
	for _, p := range r.List() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"automute", "cupsat", "ddgun"}, names)
}

func TestSelect(t *testing.T) {
	r := newTestRegistry(t)
	all := SelectionOptions{AllowStruct: true, AllowSequence: true}

	selected, err := r.Select(all)
	require.NoError(t, err)
	assert.Len(t, selected, 3)

	selected, err = r.Select(SelectionOptions{
		Include: []string{"DDGun", "cupsat"}, AllowStruct: true, AllowSequence: true,
	})
	require.NoError(t, err)
	assert.Len(t, selected, 2)

	selected, err = r.Select(SelectionOptions{
		Exclude: []string{"ddgun"}, AllowStruct: true, AllowSequence: true,
	})
	require.NoError(t, err)
	assert.Len(t, selected, 2)

	// A non-empty include list wins over the exclude list.
	selected, err = r.Select(SelectionOptions{
		Include: []string{"ddgun"}, Exclude: []string{"ddgun"},
		AllowStruct: true, AllowSequence: true,
	})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "ddgun", selected[0].Name())

	// Class gates remove whole predictor families.
	selected, err = r.Select(SelectionOptions{AllowStruct: true})
	require.NoError(t, err)
	for _, p := range selected {
		assert.NotEqual(t, InputSequence, p.InputType())
	}

	_, err = r.Select(SelectionOptions{Include: []string{"nonexistent"}, AllowStruct: true, AllowSequence: true})
	assert.Error(t, err, "an empty selection is a configuration mistake")
}

func TestAccepts(t *testing.T) {
	withSeq := &dataset.Record{
		Identifier: dataset.Identifier{Kind: dataset.UniProtAccession, Raw: "P12345"},
		Sequence:   "MKLAVT",
	}
	pdb := &dataset.Record{Identifier: dataset.Identifier{Kind: dataset.PdbAccession, Raw: "1CSE"}}
	pdbFile := &dataset.Record{Identifier: dataset.Identifier{Kind: dataset.PdbFilePath, Raw: "m.pdb"}}

	assert.True(t, Accepts(InputSequence, withSeq))
	assert.False(t, Accepts(InputSequence, pdb), "no resolved sequence")

	assert.True(t, Accepts(InputPdbID, pdb))
	assert.False(t, Accepts(InputPdbID, pdbFile))

	assert.True(t, Accepts(InputPdbFile, pdbFile))
	assert.True(t, Accepts(InputPdbFile, pdb), "accessions can be downloaded for file-based predictors")
	assert.False(t, Accepts(InputPdbFile, withSeq))
}

func TestErrorClassification(t *testing.T) {
	cause := errors.New("connection refused")

	var transport *TransportError
	err := error(&TransportError{Op: "submit", Err: cause})
	require.ErrorAs(t, err, &transport)
	assert.ErrorIs(t, err, cause)

	var parse *ResponseParseError
	err = error(&ResponseParseError{Op: "poll", Err: cause})
	require.ErrorAs(t, err, &parse)

	var jobErr *JobError
	err = error(&JobError{Message: "invalid chain"})
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "invalid chain", err.Error())
}

func TestSubmissionConstructors(t *testing.T) {
	sub := NewSubmission("https://example.org/job/1")
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "https://example.org/job/1", sub.PollURL)
	assert.Nil(t, sub.Result)

	res := &Result{DDG: -0.5}
	inst := Immediate(res)
	assert.NotEmpty(t, inst.ID)
	assert.Same(t, res, inst.Result)
	assert.NotEqual(t, sub.ID, inst.ID)
}
