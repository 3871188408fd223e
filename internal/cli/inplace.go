package cli

import (
	"errors"
	"fmt"
	"os"
)

// writeTarget resolves the -o/--in-place flag pair into a concrete
// destination. In-place edits never touch the source directly: the
// engine writes <source>.tmp, and finalize renames it over the source
// on success or discards it on a no-op.
type writeTarget struct {
	source  string
	dest    string
	inPlace bool
}

func newWriteTarget(source, output string, inPlace bool) (writeTarget, error) {
	switch {
	case inPlace && output != "":
		return writeTarget{}, errors.New("--in-place and --output are mutually exclusive")
	case inPlace:
		return writeTarget{source: source, dest: source + ".tmp", inPlace: true}, nil
	case output == "":
		return writeTarget{}, errors.New("either --output or --in-place is required")
	default:
		return writeTarget{source: source, dest: output}, nil
	}
}

// finalize completes an in-place edit. wrote reports whether the engine
// produced the destination file; a no-op leaves nothing to rename.
func (t writeTarget) finalize(wrote bool) error {
	if !t.inPlace {
		return nil
	}
	if !wrote {
		if err := os.Remove(t.dest); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("discard temp file: %w", err)
		}
		return nil
	}
	if err := os.Rename(t.dest, t.source); err != nil {
		return fmt.Errorf("rename over source: %w", err)
	}
	return nil
}

// resultPath is where the finished file lives after finalize.
func (t writeTarget) resultPath() string {
	if t.inPlace {
		return t.source
	}
	return t.dest
}
