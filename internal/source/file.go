package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/faultlinehq/faultline/internal/models"
	"github.com/faultlinehq/faultline/internal/utils"
)

// maxLineBytes bounds a single NDJSON line. Context payloads are small; a
// line this long is a broken producer, not data.
const maxLineBytes = 1 << 20

// ReadEvents loads error events from a file holding either a JSON array of
// events or newline-delimited JSON, one event per line. Malformed NDJSON
// lines are skipped and counted rather than failing the whole file; a
// malformed array is an error because nothing can be salvaged from it.
func ReadEvents(path string) ([]models.ErrorEvent, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, utils.NewAppError("source.read", "read events file", err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return readArray(trimmed)
	}
	return readLines(data)
}

func readArray(data []byte) ([]models.ErrorEvent, int, error) {
	var wire []models.IngestEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, 0, utils.NewAppError("source.read", "parse events array", err)
	}
	events := make([]models.ErrorEvent, 0, len(wire))
	for _, item := range wire {
		events = append(events, item.ToEvent())
	}
	return events, 0, nil
}

func readLines(data []byte) ([]models.ErrorEvent, int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var events []models.ErrorEvent
	skipped := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var wire models.IngestEvent
		if err := json.Unmarshal([]byte(line), &wire); err != nil {
			skipped++
			continue
		}
		events = append(events, wire.ToEvent())
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, utils.NewAppError("source.read", "scan events file", err)
	}
	return events, skipped, nil
}
