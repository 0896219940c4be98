package display

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/findr/internal/content"
	"github.com/harrison/findr/internal/query"
)

// Printer renders search results to a writer. Colors are applied only when
// the printer was created with color output enabled.
type Printer struct {
	out         io.Writer
	long        bool
	colorOutput bool

	name     *color.Color
	meta     *color.Color
	fileHead *color.Color
	location *color.Color
	summary  *color.Color
}

// NewPrinter creates a Printer. long enables the metadata columns
// (type, size, modified time) before each path.
func NewPrinter(out io.Writer, long bool, colorOutput bool) *Printer {
	return &Printer{
		out:         out,
		long:        long,
		colorOutput: colorOutput,
		name:        color.New(color.FgGreen),
		meta:        color.New(color.FgWhite),
		fileHead:    color.New(color.FgYellow),
		location:    color.New(color.FgBlue),
		summary:     color.New(color.FgGreen),
	}
}

// ColorEnabled reports whether the writer is a terminal that should
// receive ANSI colors. Detection uses isatty and respects the color
// library's NO_COLOR handling.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PrintResult renders one match: the bare path in plain mode, or the
// metadata columns plus the path in long mode. The base name is
// highlighted green on terminals so matches stand out in deep paths.
func (p *Printer) PrintResult(res query.MatchResult) {
	path := res.Path
	if p.colorOutput {
		dir, base := filepath.Split(res.Path)
		path = dir + p.name.Sprint(base)
	}

	if !p.long {
		fmt.Fprintln(p.out, path)
		return
	}

	modified := res.ModTime.Format("2006-01-02 15:04")
	fmt.Fprintf(p.out, "%-2s %10d  %s  %s\n", res.Type.String(), res.Size, modified, path)
}

// PrintContentMatches renders the matches found inside one file: the file
// path as a yellow header, then one "Line N, Column M:" location per
// matching line with every occurrence of the key highlighted.
func (p *Printer) PrintContentMatches(path, key string, matches []content.LineMatch) {
	if len(matches) == 0 {
		return
	}

	if p.colorOutput {
		fmt.Fprintln(p.out, p.fileHead.Sprint(path))
	} else {
		fmt.Fprintln(p.out, path)
	}

	for _, m := range matches {
		location := fmt.Sprintf("Line %d, Column %d:", m.Line, m.Column)
		excerpt := m.Excerpt
		if p.colorOutput {
			location = p.location.Sprint(location)
			excerpt = strings.ReplaceAll(excerpt, key, p.name.Sprint(key))
		}
		fmt.Fprintf(p.out, "%s %s\n", location, excerpt)
	}
}

// PrintSummary renders the closing match-count and elapsed-time line.
// Warnings are mentioned only when some occurred.
func (p *Printer) PrintSummary(count int, elapsed time.Duration, warnings int) {
	line := fmt.Sprintf("%d match(es) in %s", count, elapsed.Round(time.Millisecond))
	if warnings > 0 {
		line += fmt.Sprintf(" (%d warning(s), see stderr)", warnings)
	}
	if p.colorOutput {
		fmt.Fprintf(p.out, "\n%s\n", p.summary.Sprint(line))
		return
	}
	fmt.Fprintf(p.out, "\n%s\n", line)
}
