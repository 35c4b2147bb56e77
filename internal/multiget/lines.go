package multiget

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// decodeContent renders payload as text, replacing invalid UTF-8 with a
// placeholder rather than failing (spec §4.5).
func decodeContent(payload []byte) string {
	if utf8.Valid(payload) {
		return string(payload)
	}
	return "[binary or invalid UTF-8 content omitted]"
}

// sliceLines returns the text from 1-indexed fromLine onward (saturating
// fromLine<=0 to 1), capped at maxLines when non-nil, with a truncation
// marker appended when lines were omitted. maxLines == pointer-to-zero
// returns empty content with no marker (spec §8 boundary behavior).
func sliceLines(content string, fromLine int, maxLines *int) (result string, lineCount int) {
	if fromLine <= 0 {
		fromLine = 1
	}
	if maxLines != nil && *maxLines == 0 {
		return "", 0
	}

	lines := strings.Split(content, "\n")
	start := fromLine - 1
	if start >= len(lines) {
		return "", 0
	}

	end := len(lines)
	if maxLines != nil && *maxLines > 0 && start+*maxLines < end {
		end = start + *maxLines
	}

	selected := lines[start:end]
	remaining := len(lines) - end
	text := strings.Join(selected, "\n")
	if remaining > 0 && maxLines != nil && *maxLines > 0 {
		text += fmt.Sprintf("\n[... truncated %d more lines]", remaining)
	}
	return text, len(selected)
}

// splitLineSuffix splits a trailing ":N" line-number suffix off path, per
// spec §6's "path may carry a :linenum suffix".
func splitLineSuffix(path string) (base string, line int, ok bool) {
	idx := strings.LastIndexByte(path, ':')
	if idx < 0 || idx == len(path)-1 {
		return path, 0, false
	}
	n, err := strconv.Atoi(path[idx+1:])
	if err != nil || n <= 0 {
		return path, 0, false
	}
	return path[:idx], n, true
}
