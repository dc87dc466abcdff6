package sequence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/loschmidt/BenchStab/pkg/aminoacid"
)

// FastaRecord is one header/sequence pair from a FASTA stream.
type FastaRecord struct {
	Header   string
	Sequence string
}

// ParseFasta reads every record from a FASTA stream. A stream with no '>'
// header but containing residue text is treated as a single bare sequence.
func ParseFasta(r io.Reader) ([]FastaRecord, error) {
	var records []FastaRecord
	var current *FastaRecord
	var bare strings.Builder

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if current != nil {
				records = append(records, *current)
			}
			current = &FastaRecord{Header: strings.TrimPrefix(line, ">")}
			continue
		}
		if current != nil {
			current.Sequence += strings.ToUpper(line)
		} else {
			bare.WriteString(strings.ToUpper(line))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fasta stream: %w", err)
	}
	if current != nil {
		records = append(records, *current)
	}
	if len(records) == 0 && bare.Len() > 0 {
		records = append(records, FastaRecord{Sequence: bare.String()})
	}
	return records, nil
}

// ReadFastaFile returns the first sequence of a FASTA file.
func ReadFastaFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open fasta file: %w", err)
	}
	defer f.Close()

	records, err := ParseFasta(f)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("no sequences found in %q", path)
	}
	return records[0].Sequence, nil
}

// ReadPDBSeqres extracts a chain's sequence from the SEQRES records of a
// PDB file. Residues outside the standard twenty (ligands, modified
// residues) are rendered as 'X'. An empty chain selects the first chain
// encountered.
func ReadPDBSeqres(path, chain string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdb file: %w", err)
	}
	defer f.Close()

	return parseSeqres(f, path, chain)
}

func parseSeqres(r io.Reader, name, chain string) (string, error) {
	chain = strings.ToUpper(chain)
	var seq strings.Builder
	found := false

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "SEQRES") {
			continue
		}
		fields := strings.Fields(line)
		// SEQRES serial chain numRes RES RES RES ...
		if len(fields) < 5 {
			continue
		}
		lineChain := strings.ToUpper(fields[2])
		if chain == "" {
			chain = lineChain
		}
		if lineChain != chain {
			continue
		}
		found = true
		for _, res := range fields[4:] {
			if aa, ok := aminoacid.FromThreeLetter(res); ok {
				seq.WriteByte(aa.Code)
			} else {
				seq.WriteByte('X')
			}
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("failed to read pdb file: %w", err)
	}
	if !found {
		if chain == "" {
			return "", fmt.Errorf("no SEQRES records found in %q", name)
		}
		return "", fmt.Errorf("chain %q not found in SEQRES records of %q", chain, name)
	}
	return seq.String(), nil
}
