package ingest

import (
	"bytes"
	"strings"
)

// maxPartial bounds the retained partial line. A stream that never delivers
// a newline would otherwise grow the buffer without limit.
const maxPartial = 64 * 1024

// lineBuffer assembles complete lines from arbitrary byte chunks. A trailing
// partial line is carried over to the next chunk; a partial longer than
// maxPartial is force-completed as a line of its own.
type lineBuffer struct {
	rem []byte
}

// split consumes one chunk and returns the complete, trimmed, non-blank
// lines it finished.
func (b *lineBuffer) split(chunk []byte) []string {
	b.rem = append(b.rem, chunk...)
	var lines []string
	for {
		i := bytes.IndexByte(b.rem, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSpace(string(b.rem[:i]))
		b.rem = b.rem[i+1:]
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(b.rem) > maxPartial {
		line := strings.TrimSpace(string(b.rem))
		b.rem = nil
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// flush returns any retained partial line as a final line, if non-blank.
func (b *lineBuffer) flush() (string, bool) {
	line := strings.TrimSpace(string(b.rem))
	b.rem = nil
	return line, line != ""
}
