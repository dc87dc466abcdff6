package sequence

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loschmidt/BenchStab/pkg/dataset"
)

func TestUniProtSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uniprotkb/P12345.fasta":
			fmt.Fprint(w, ">sp|P12345|TEST\nMKTAYI\nAKQR\n")
		case "/uniprotkb/search":
			assert.Equal(t, "xref:pdb-1CSE", r.URL.Query().Get("query"))
			fmt.Fprint(w, ">sp|P00778|SUBT\nSVLTAG\n")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := &UniProtSource{BaseURL: srv.URL}

	seq, err := src.Fetch(context.Background(), dataset.Identifier{Kind: dataset.UniProtAccession, Raw: "P12345"})
	require.NoError(t, err)
	assert.Equal(t, "MKTAYIAKQR", seq)

	// PDB accessions resolve through the cross-reference search.
	seq, err = src.Fetch(context.Background(), dataset.Identifier{Kind: dataset.PdbAccession, Raw: "1CSE"})
	require.NoError(t, err)
	assert.Equal(t, "SVLTAG", seq)

	_, err = src.Fetch(context.Background(), dataset.Identifier{Kind: dataset.UniProtAccession, Raw: "Q99999"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.Fetch(context.Background(), dataset.Identifier{Kind: dataset.RawSequence, Raw: "MKT"})
	assert.Error(t, err)
}

func TestRCSBSourceFetch(t *testing.T) {
	entry := ">1CSE_1|Chains A, B|SUBTILISIN\nSVLTAG\n>1CSE_2|Chain I [auth E]|EGLIN C\nMKTAYI\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fasta/entry/1CSE" {
			fmt.Fprint(w, entry)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := &RCSBSource{BaseURL: srv.URL}
	ctx := context.Background()

	seq, err := src.Fetch(ctx, dataset.Identifier{Kind: dataset.PdbAccession, Raw: "1cse", Chain: "B"})
	require.NoError(t, err)
	assert.Equal(t, "SVLTAG", seq)

	// The auth annotation wins over the entity chain label.
	seq, err = src.Fetch(ctx, dataset.Identifier{Kind: dataset.PdbAccession, Raw: "1CSE", Chain: "E"})
	require.NoError(t, err)
	assert.Equal(t, "MKTAYI", seq)

	// No chain selects the first polymer entity.
	seq, err = src.Fetch(ctx, dataset.Identifier{Kind: dataset.PdbAccession, Raw: "1CSE"})
	require.NoError(t, err)
	assert.Equal(t, "SVLTAG", seq)

	_, err = src.Fetch(ctx, dataset.Identifier{Kind: dataset.PdbAccession, Raw: "1CSE", Chain: "Z"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.Fetch(ctx, dataset.Identifier{Kind: dataset.PdbAccession, Raw: "9XYZ"})
	assert.ErrorIs(t, err, ErrNotFound)
}
