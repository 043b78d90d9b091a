package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadHeadersFile parses a static-headers file, one "Name: Value" pair per
// line, blank lines and lines starting with '#' ignored. This is the
// default loadFn passed to WatchStaticHeaders.
func LoadHeadersFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headers := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			return nil, fmt.Errorf("config: %s:%d: missing ':' in %q", path, lineNum, line)
		}
		name := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		headers[name] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return headers, nil
}
