package filescan

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/otw-tahir/otw-string-finder/internal/match"
	"github.com/otw-tahir/otw-string-finder/pkg/types"
)

// maxLineBytes bounds a single scanned line. Longer lines make the whole
// file unscannable rather than stalling the batch.
const maxLineBytes = 1 << 20

// ScanFile scans one file and returns a match record per matching line.
// Errors mean the unit is unscannable; the caller skips it and moves on.
func ScanFile(root, relPath string, eng *match.Engine) ([]types.MatchRecord, error) {
	f, err := os.Open(filepath.Join(root, relPath))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", relPath, err)
	}
	defer func() { _ = f.Close() }()

	var records []types.MatchRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !eng.Match(line) {
			continue
		}
		records = append(records, types.MatchRecord{
			Kind: types.KindFile,
			File: &types.FileLocation{
				Path:   relPath,
				Line:   lineNo,
				Column: eng.Column(line),
			},
			Preview: eng.Preview(line),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", relPath, err)
	}
	return records, nil
}
