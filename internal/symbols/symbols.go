// Package symbols reads the operator-maintained ticker list.
package symbols

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// Read loads ticker symbols from a text file, one per line.
// Blank lines and lines starting with '#' are skipped; symbols are
// uppercased. Order is preserved and duplicates are kept as written.
func Read(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open symbols file: %w", err)
	}
	defer f.Close()

	var list []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read symbols file: %w", err)
	}
	return list, nil
}
