package ledger

import (
	"bytes"
	"io"
	"os"
)

// tailBlockSize is how much of the file tail is pulled in per read while
// searching backwards for the last line.
const tailBlockSize = 1024

// lastLine returns the last non-empty line of the file without scanning it
// from the start: blocks are read backwards from the end until a complete
// line is in hand. Ledger files span years, and resuming an ingestion only
// needs their final row.
func lastLine(f *os.File, size int64) (string, error) {
	var block []byte
	for end := size; end > 0; {
		start := end - tailBlockSize
		if start < 0 {
			start = 0
		}
		buf := make([]byte, end-start)
		if _, err := f.ReadAt(buf, start); err != nil && err != io.EOF {
			return "", err
		}
		block = append(buf, block...)

		lines := bytes.Split(block, []byte{'\n'})
		for i := len(lines) - 1; i >= 0; i-- {
			txt := bytes.TrimSpace(lines[i])
			if len(txt) == 0 {
				continue
			}
			if i > 0 || start == 0 {
				// The line starts after a newline (or at the very start of
				// the file), so it is complete.
				return string(txt), nil
			}
			break // line may continue before this block, keep reading
		}
		end = start
	}
	return "", nil
}
