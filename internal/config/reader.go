package config

import (
	"bufio"
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
)

// ReadLines returns the lines of the file at path. A missing file has no
// lines.
func ReadLines(fsys afero.Fs, path string) ([]string, error) {
	file, err := fsys.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := scanner.Text()
		line = strings.TrimSuffix(line, "\r") // Windows CRLF
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
