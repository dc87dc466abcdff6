package sequence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loschmidt/BenchStab/pkg/dataset"
	"github.com/loschmidt/BenchStab/pkg/mutation"
)

type fakeSource struct {
	name  string
	seq   string
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, id dataset.Identifier) (string, error) {
	f.calls++
	return f.seq, f.err
}

func countSeverity(diags []dataset.Diagnostic, sev dataset.Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

func mustParse(t *testing.T, s string) mutation.Mutation {
	t.Helper()
	m, err := mutation.Parse(s)
	require.NoError(t, err)
	return m
}

func TestResolvePdbAccessionPrimaryMatch(t *testing.T) {
	primary := &fakeSource{name: "uniprot", seq: strings.Repeat("G", 44) + "L" + "GG"}
	structure := &fakeSource{name: "rcsb"}
	r := NewResolver(primary, structure, nil)

	seq, aligned, diags := r.Resolve(context.Background(),
		dataset.Identifier{Kind: dataset.PdbAccession, Raw: "1CSE", Chain: "I"},
		mustParse(t, "L45G"))

	assert.Equal(t, primary.seq, seq)
	require.NotNil(t, aligned)
	assert.Equal(t, 45, aligned.Position)
	assert.Empty(t, diags)
	assert.Equal(t, 0, structure.calls, "structure source must not be consulted on a primary match")
}

func TestResolvePdbAccessionRealignment(t *testing.T) {
	// Primary rejects position 45; the structure sequence is two residues
	// shorter and validates the shifted position 43.
	primary := &fakeSource{name: "uniprot", seq: strings.Repeat("G", 44) + "A" + "GG"}
	structure := &fakeSource{name: "rcsb", seq: strings.Repeat("G", 42) + "L" + "GG"}
	r := NewResolver(primary, structure, nil)

	seq, aligned, diags := r.Resolve(context.Background(),
		dataset.Identifier{Kind: dataset.PdbAccession, Raw: "1CSE", Chain: "I"},
		mustParse(t, "L45G"))

	assert.Equal(t, structure.seq, seq)
	require.NotNil(t, aligned)
	assert.Equal(t, "L43G", aligned.String())
	assert.Equal(t, 1, countSeverity(diags, dataset.Warning))
	assert.Equal(t, 1, countSeverity(diags, dataset.Info))
}

func TestResolvePdbAccessionPrimaryUnavailable(t *testing.T) {
	// With no primary sequence there is no length delta to apply.
	primary := &fakeSource{name: "uniprot", err: errors.New("boom")}
	structure := &fakeSource{name: "rcsb", seq: strings.Repeat("G", 44) + "L" + "GG"}
	r := NewResolver(primary, structure, nil)

	seq, aligned, diags := r.Resolve(context.Background(),
		dataset.Identifier{Kind: dataset.PdbAccession, Raw: "1CSE", Chain: "I"},
		mustParse(t, "L45G"))

	assert.Equal(t, structure.seq, seq)
	require.NotNil(t, aligned)
	assert.Equal(t, 45, aligned.Position)
	assert.Equal(t, 1, countSeverity(diags, dataset.Warning))
	assert.Equal(t, 0, countSeverity(diags, dataset.Info))
}

func TestResolvePdbAccessionBothReject(t *testing.T) {
	primary := &fakeSource{name: "uniprot", seq: strings.Repeat("A", 50)}
	structure := &fakeSource{name: "rcsb", seq: strings.Repeat("A", 50)}
	r := NewResolver(primary, structure, nil)

	seq, aligned, diags := r.Resolve(context.Background(),
		dataset.Identifier{Kind: dataset.PdbAccession, Raw: "1CSE", Chain: "I"},
		mustParse(t, "L45G"))

	assert.Empty(t, seq)
	assert.Nil(t, aligned)
	assert.Equal(t, 2, countSeverity(diags, dataset.Warning))
}

func TestResolvePdbAccessionBothUnavailable(t *testing.T) {
	primary := &fakeSource{name: "uniprot", err: ErrNotFound}
	structure := &fakeSource{name: "rcsb", err: ErrNotFound}
	r := NewResolver(primary, structure, nil)

	seq, aligned, diags := r.Resolve(context.Background(),
		dataset.Identifier{Kind: dataset.PdbAccession, Raw: "9XYZ"},
		mustParse(t, "L45G"))

	assert.Empty(t, seq)
	assert.Nil(t, aligned)
	assert.Equal(t, 2, countSeverity(diags, dataset.Warning))
}

func TestResolveUniProt(t *testing.T) {
	primary := &fakeSource{name: "uniprot", seq: "MKTAYI"}
	r := NewResolver(primary, &fakeSource{name: "rcsb"}, nil)

	// The residue mismatch is not the resolver's concern for UniProt
	// accessions; the sequence comes back unrealigned either way.
	seq, aligned, diags := r.Resolve(context.Background(),
		dataset.Identifier{Kind: dataset.UniProtAccession, Raw: "P12345"},
		mustParse(t, "L3G"))

	assert.Equal(t, "MKTAYI", seq)
	require.NotNil(t, aligned)
	assert.Equal(t, 3, aligned.Position)
	assert.Empty(t, diags)
}

func TestResolveUniProtUnavailable(t *testing.T) {
	primary := &fakeSource{name: "uniprot", err: ErrNotFound}
	r := NewResolver(primary, &fakeSource{name: "rcsb"}, nil)

	seq, aligned, diags := r.Resolve(context.Background(),
		dataset.Identifier{Kind: dataset.UniProtAccession, Raw: "P12345"},
		mustParse(t, "L3G"))

	assert.Empty(t, seq)
	assert.Nil(t, aligned)
	assert.Equal(t, 1, countSeverity(diags, dataset.Warning))
}

func TestResolveRawSequence(t *testing.T) {
	r := NewResolver(&fakeSource{name: "uniprot"}, &fakeSource{name: "rcsb"}, nil)

	seq, aligned, diags := r.Resolve(context.Background(),
		dataset.Identifier{Kind: dataset.RawSequence, Raw: "MKLAVT"},
		mustParse(t, "L3G"))

	assert.Equal(t, "MKLAVT", seq)
	require.NotNil(t, aligned)
	assert.Empty(t, diags)
}

func TestResolvePdbFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.pdb")
	content := "SEQRES   1 A    6  MET LYS THR ALA TYR ILE\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := NewResolver(&fakeSource{name: "uniprot"}, &fakeSource{name: "rcsb"}, nil)
	id := dataset.Identifier{Kind: dataset.PdbFilePath, Raw: path, Chain: "A"}

	// Zero-based numbering: position 2 indexes the third residue, THR.
	seq, aligned, diags := r.Resolve(context.Background(), id, mustParse(t, "T2G"))
	assert.Equal(t, "MKTAYI", seq)
	require.NotNil(t, aligned)
	assert.Equal(t, "T3G", aligned.String())
	assert.Empty(t, diags)

	// An inconsistent position leaves the sequence unattached.
	seq, aligned, diags = r.Resolve(context.Background(), id, mustParse(t, "L2G"))
	assert.Empty(t, seq)
	assert.Nil(t, aligned)
	assert.Equal(t, 1, countSeverity(diags, dataset.Warning))
}

func TestResolveFastaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protein.fasta")
	require.NoError(t, os.WriteFile(path, []byte(">entry\nMKLAVT\n"), 0o644))

	r := NewResolver(&fakeSource{name: "uniprot"}, &fakeSource{name: "rcsb"}, nil)

	seq, aligned, diags := r.Resolve(context.Background(),
		dataset.Identifier{Kind: dataset.FastaFilePath, Raw: path},
		mustParse(t, "L3G"))

	assert.Equal(t, "MKLAVT", seq)
	require.NotNil(t, aligned)
	assert.Equal(t, 3, aligned.Position)
	assert.Empty(t, diags)
}
