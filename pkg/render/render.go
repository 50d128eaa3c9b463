// Package render turns an import plan into formatted Python source text:
// plain submodule imports followed by line-wrapped from-imports.
//
// Rendering is pure and deterministic: identical plans always produce
// byte-identical output.
package render

import (
	"strings"

	"github.com/initforge/pyinit/pkg/plan"
)

// LineWidth is the wrap budget for from-import statements. Lines only
// exceed it when a single identifier is itself longer than the budget.
const LineWidth = 79

// headerLines is the optional block emitted before any imports: a linter
// suppression marker and the import-semantics declaration kept for
// backward compatibility with Python 2 consumers.
var headerLines = []string{
	"# flake8: noqa",
	"from __future__ import absolute_import, division, print_function, unicode_literals",
}

// Render produces the synthesized import block for p.
//
// The block consists of, in order: the optional header (withHeader), one
// "import <root>.<module>" line per plan entry, and one wrapped
// "from <root>.<module> import a, b, c," statement per entry that has at
// least one public callable. Empty parts contribute nothing; non-empty
// parts are joined with single newlines. The result never carries a
// trailing newline.
func Render(p plan.Plan, rootName string, withHeader bool) string {
	var parts []string
	if withHeader {
		parts = append(parts, strings.Join(headerLines, "\n"))
	}
	if s := importBlock(p, rootName); s != "" {
		parts = append(parts, s)
	}
	if s := fromImportBlock(p, rootName); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}

// importBlock emits one plain import line per entry, in plan order.
// Every retained submodule gets a line, with or without callables.
func importBlock(p plan.Plan, rootName string) string {
	lines := make([]string, 0, len(p))
	for _, e := range p {
		lines = append(lines, "import "+rootName+"."+e.Module)
	}
	return strings.Join(lines, "\n")
}

// fromImportBlock emits one wrapped from-import statement per entry with
// callables. Entries without callables emit nothing.
func fromImportBlock(p plan.Plan, rootName string) string {
	var stmts []string
	for _, e := range p {
		if len(e.Callables) == 0 {
			continue
		}
		prefix := "from " + rootName + "." + e.Module + " import "
		stmt := prefix + strings.Join(e.Callables, ", ") + ","

		// Continuation names align under the column where an opening
		// parenthesis would sit after the import keyword.
		stmts = append(stmts, wrap(stmt, LineWidth, len(prefix)+1))
	}
	return strings.Join(stmts, "\n")
}

// wrap packs text into lines of at most width characters, breaking only
// at whitespace. Continuation lines are indented by indent spaces, which
// count toward the width. A word longer than the remaining budget is
// placed on its own line rather than split.
func wrap(text string, width, indent int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	contPrefix := strings.Repeat(" ", indent)
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) <= width {
			line += " " + word
			continue
		}
		lines = append(lines, line)
		line = contPrefix + word
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
