// Package pysrc extracts top-level callable names from Python source text.
//
// The package wraps a tree-sitter Python grammar so that analyzed code is
// never imported or executed: malformed or side-effecting modules cannot
// affect the calling process. Parsing is pure text analysis.
//
// Names are returned in definition order. Definitions nested inside classes
// or functions are reported with dotted qualified names ("Class.method",
// "outer.inner"); callers that only want true top-level callables filter
// out any name containing a dot.
package pysrc

import (
	"context"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/initforge/pyinit/pkg/errors"
)

// MaxSourceSize is the largest source file the parser will accept, in bytes.
// Python modules beyond this size are almost certainly generated artifacts.
const MaxSourceSize = 10 * 1024 * 1024

// TopLevelCallables parses source as Python and returns the names of all
// defined callables (functions and classes) in order of first appearance.
//
// Module-level definitions yield bare names. Members of classes and
// definitions nested inside other definitions yield dotted qualified names.
// Definitions directly inside module-level "if" blocks (version guards)
// count as module level. Decorated definitions are unwrapped.
//
// Returns an error with code PARSE_FAILED when the source is not valid
// UTF-8 or the parse tree contains syntax errors. No partial results are
// returned on failure.
func TopLevelCallables(ctx context.Context, source []byte) ([]string, error) {
	if len(source) > MaxSourceSize {
		return nil, errors.New(errors.ErrCodeParse, "source exceeds %d bytes", MaxSourceSize)
	}
	if !utf8.Valid(source) {
		return nil, errors.New(errors.ErrCodeParse, "source is not valid UTF-8")
	}

	// A fresh parser per call keeps the function safe for concurrent use.
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "tree-sitter parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, errors.New(errors.ErrCodeParse, "parser returned no syntax tree")
	}
	if root.HasError() {
		return nil, errors.New(errors.ErrCodeParse, "source contains syntax errors")
	}

	w := &walker{source: source, seen: make(map[string]bool)}
	w.block(root, "", true)
	return w.names, nil
}

// walker accumulates callable names during a tree traversal.
// seen deduplicates redefinitions, keeping the first occurrence.
type walker struct {
	source []byte
	names  []string
	seen   map[string]bool
}

// block processes the statements of a module, class body, or function body.
// qualifier is the dotted prefix for definitions found here; topLevel marks
// module scope, where "if" blocks are transparent (version-guard pattern).
func (w *walker) block(node *sitter.Node, qualifier string, topLevel bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "function_definition", "class_definition":
			w.definition(child, qualifier)
		case "decorated_definition":
			w.decorated(child, qualifier)
		case "if_statement":
			if topLevel {
				w.guardBlocks(child, qualifier)
			}
		}
	}
}

// definition records a function or class and descends into its body for
// nested definitions, which get dotted qualified names.
func (w *walker) definition(node *sitter.Node, qualifier string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := string(w.source[nameNode.StartByte():nameNode.EndByte()])
	if qualifier != "" {
		name = qualifier + "." + name
	}
	if !w.seen[name] {
		w.seen[name] = true
		w.names = append(w.names, name)
	}

	if body := node.ChildByFieldName("body"); body != nil {
		w.block(body, name, false)
	}
}

// decorated unwraps a decorated_definition to the definition it wraps.
func (w *walker) decorated(node *sitter.Node, qualifier string) {
	if def := node.ChildByFieldName("definition"); def != nil {
		switch def.Type() {
		case "function_definition", "class_definition":
			w.definition(def, qualifier)
		}
	}
}

// guardBlocks treats the branches of a module-level "if" statement as module
// scope, so defs behind version guards are still reported as top level.
func (w *walker) guardBlocks(node *sitter.Node, qualifier string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "block":
			w.block(child, qualifier, true)
		case "elif_clause":
			if body := child.ChildByFieldName("consequence"); body != nil {
				w.block(body, qualifier, true)
			}
		case "else_clause":
			if body := child.ChildByFieldName("body"); body != nil {
				w.block(body, qualifier, true)
			}
		}
	}
}

// IsPublic reports whether a callable name extracted by TopLevelCallables
// denotes a public top-level callable: not underscore-prefixed and not a
// dotted qualified name.
func IsPublic(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_") && !strings.Contains(name, ".")
}
