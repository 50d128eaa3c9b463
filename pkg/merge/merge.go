// Package merge splices a rendered import block into an existing
// __init__.py, replacing only the file's volatile region.
//
// The volatile region is either delimited by explicit marker comments or
// inferred from the leading docstring delimiter, __future__ imports, and
// comments. Everything outside the region is preserved byte for byte.
package merge

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/initforge/pyinit/pkg/errors"
)

// Explicit region markers. Their presence switches boundary detection from
// heuristic to explicit, and the text preceding the begin marker's comment
// character becomes the indentation of the generated block.
const (
	BeginMarker = "# <AUTOGEN_INIT>"
	EndMarker   = "# </AUTOGEN_INIT>"
)

// Region is the volatile slice of an init file's line sequence.
// Start and End are line indices with 0 <= Start <= End <= len(lines);
// the lines in [Start, End) are replaced by the rendered block.
type Region struct {
	Start    int
	End      int
	Indent   string
	Explicit bool
}

// ScanRegion computes the volatile region of the given lines.
//
// The scan is a two-state machine. In the initial heuristic state, every
// line that is a bare triple-quote delimiter, a __future__ import, or a
// comment advances Start past itself. Seeing the begin marker switches to
// the sticky explicit state, records the marker's indentation, and sets
// Start past the marker; from then on only the end marker matters, and it
// sets End at its own line. Without an end marker, End stays at the total
// line count.
//
// The heuristic rules deliberately keep advancing on every matching line,
// even after unrelated lines were seen in between. A comment far from the
// top therefore drags Start down past intervening content. Surprising,
// but long-standing observable behavior that downstream packages rely on.
func ScanRegion(lines []string) Region {
	r := Region{Start: 0, End: len(lines)}
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if !r.Explicit && (stripped == `"""` || stripped == "'''") {
			r.Start = i + 1
		}
		if !r.Explicit && strings.HasPrefix(stripped, "from __future__") {
			r.Start = i + 1
		}
		if !r.Explicit && strings.HasPrefix(stripped, "#") {
			r.Start = i + 1
		}
		if strings.HasPrefix(stripped, BeginMarker) {
			r.Indent = line[:strings.Index(line, "#")]
			r.Explicit = true
			r.Start = i + 1
		}
		if r.Explicit && strings.HasPrefix(stripped, EndMarker) {
			r.End = i
		}
	}
	return r
}

// Merge replaces the volatile region of the init file at initPath with the
// rendered block and writes the result back to the same path.
//
// The file must exist (MISSING_INIT_FILE otherwise). The write replaces
// the whole file content via a temp file in the same directory, so a
// failure partway never leaves a half-written target. The returned
// Region reports which lines of the original file were replaced.
func Merge(initPath, rendered string, logger *log.Logger) (Region, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger.Info("Updating init file", "path", initPath)

	text, region, err := Preview(initPath, rendered, logger)
	if err != nil {
		return region, err
	}

	logger.Debug("Writing merged init file", "path", initPath, "bytes", len(text))
	return region, writeFileReplace(initPath, []byte(text))
}

// Preview computes the merged file content without writing anything.
// It fails with MISSING_INIT_FILE when the target does not exist and with
// REGION_CONSISTENCY when boundary computation is inconsistent.
func Preview(initPath, rendered string, logger *log.Logger) (string, Region, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	data, err := os.ReadFile(initPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", Region{}, errors.New(errors.ErrCodeMissingInit, "no init file at %s", initPath)
		}
		return "", Region{}, errors.Wrap(errors.ErrCodeMissingInit, err, "read %s", initPath)
	}

	lines := splitLines(string(data))
	region := ScanRegion(lines)
	logger.Debug("Computed volatile region",
		"start", region.Start, "end", region.End, "explicit", region.Explicit)

	if region.Start > region.End {
		return "", region, errors.New(errors.ErrCodeConsistency,
			"region start %d is past end %d in %s", region.Start, region.End, initPath)
	}

	block := indent(rendered, region.Indent) + "\n"

	var b strings.Builder
	for _, line := range lines[:region.Start] {
		b.WriteString(line)
	}
	b.WriteString(block)
	for _, line := range lines[region.End:] {
		b.WriteString(line)
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace), region, nil
}

// splitLines splits text into newline-terminated lines, readlines-style:
// every element keeps its trailing newline except possibly the last.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// indent prefixes every line of s with the given prefix.
func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

// writeFileReplace atomically replaces the file at path: the new content
// is written to a uniquely named temp file in the same directory and
// renamed over the target.
func writeFileReplace(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInternal, err, "replace %s", path)
	}
	return nil
}
