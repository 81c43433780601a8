package ingest

import (
	"fmt"
	"os"

	"github.com/agenthands/wardwatch/internal/core/model"
)

// LoadTransfers reads a transfers table from disk, choosing CSV or XLSX by
// file extension.
func (rd *Reader) LoadTransfers(path string) ([]model.TransferRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transfers file '%s': %w", path, err)
	}
	defer f.Close()
	return rd.Transfers(f, FormatOf(path))
}

func (rd *Reader) LoadMicrobiology(path string) ([]model.MicroRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open microbiology file '%s': %w", path, err)
	}
	defer f.Close()
	return rd.Microbiology(f, FormatOf(path))
}
