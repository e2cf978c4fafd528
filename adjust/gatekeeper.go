package adjust

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// The gatekeeper is an optimization, not a correctness mechanism: a forced
// recompute must always produce the same artifacts. Whenever freshness is
// in doubt the answer is "stale".

// Fresh reports whether output exists and is strictly newer than every
// input. A missing output is stale; a missing input counts as infinitely
// old, matching "nothing upstream changed".
func Fresh(output string, inputs ...string) bool {
	out, err := os.Stat(output)
	if err != nil {
		return false
	}
	for _, in := range inputs {
		if !out.ModTime().After(mtime(in)) {
			return false
		}
	}
	return true
}

// mtime returns a path's modification time, or the zero time when it does
// not exist. For directories it is the latest mtime of any file inside,
// so a corpus folder reads as "when was anything in it last touched".
func mtime(path string) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	if !fi.IsDir() {
		return fi.ModTime()
	}
	latest := fi.ModTime()
	filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil && info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	return latest
}
