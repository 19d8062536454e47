// Package jscheck compile-checks generated JavaScript so a build never
// ships a document whose inline script no longer parses.
package jscheck

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dop251/goja"
)

var inlineScriptRe = regexp.MustCompile(`(?is)<script([^>]*)>(.*?)</script>`)

// Compile parses src as a JavaScript program without executing it.
// name is used in error positions only.
func Compile(name, src string) error {
	if _, err := goja.Compile(name, src, false); err != nil {
		return fmt.Errorf("javascript compile failed: %w", err)
	}
	return nil
}

// InlineScripts extracts the bodies of inline <script> elements from an
// HTML document, skipping external scripts (those with a src attribute).
// Good enough for the fixed document structure this tool targets; this
// is not an HTML parser.
func InlineScripts(html string) []string {
	var out []string
	for _, m := range inlineScriptRe.FindAllStringSubmatch(html, -1) {
		attrs, body := m[1], m[2]
		if strings.Contains(strings.ToLower(attrs), "src=") {
			continue
		}
		if strings.TrimSpace(body) == "" {
			continue
		}
		out = append(out, body)
	}
	return out
}

// CheckDocument compiles every inline script in an HTML document and
// returns the first failure.
func CheckDocument(name, html string) error {
	for i, src := range InlineScripts(html) {
		if err := Compile(fmt.Sprintf("%s#script%d", name, i+1), src); err != nil {
			return err
		}
	}
	return nil
}
