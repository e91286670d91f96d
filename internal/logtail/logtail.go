package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Tail returns at most maxLines from the end of the log at path, skipping
// JSON entries below minLevel. Lines that are not JSON objects are kept.
// A missing file yields no lines and no error.
func Tail(path string, maxLines int, minLevel zerolog.Level) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	count, next := 0, 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || !passes(line, minLevel) {
			continue
		}
		ring[next] = line
		next = (next + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	out := make([]string, count)
	start := 0
	if count == maxLines {
		start = next
	}
	for i := range out {
		out[i] = ring[(start+i)%maxLines]
	}
	return out, nil
}

func passes(line string, minLevel zerolog.Level) bool {
	if minLevel <= zerolog.TraceLevel {
		return true
	}
	var entry struct {
		Level string `json:"level"`
	}
	if err := json.Unmarshal([]byte(line), &entry); err != nil || entry.Level == "" {
		return true
	}
	level, err := zerolog.ParseLevel(entry.Level)
	if err != nil {
		return true
	}
	return level >= minLevel
}
