// Package patch splices the embedded script data and its loader routine
// into the host document. The document is treated as an opaque string;
// the two insertion points are found either through explicit injection
// markers the document declares, or by matching the literal text of the
// host's startup code.
package patch

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"scriptpack/internal/pack"
)

// Explicit injection markers. A host document that declares these gets a
// stable contract with this tool instead of depending on the literal
// text of its own init code.
const (
	ScriptsMarker = "// scriptpack:scripts"
	LoadMarker    = "// scriptpack:load"
)

// Legacy anchors, matched when the explicit markers are absent. These
// mirror the host document's original structure: the app-start block at
// the end of the main script region, and the final log line of init().
var (
	scriptEndRe  = regexp.MustCompile(`(?s)(        // Start the app\s+init\(\);\s+)(    </script>)`)
	initRe       = regexp.MustCompile(`(?s)(function init\(\) \{[^}]*)(log\('App initialized and ready'\);)`)
	scriptsMkrRe = regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(ScriptsMarker) + `[ \t]*(?:\r?\n|$)`)
	loadMkrRe    = regexp.MustCompile(`(?m)^([ \t]*)` + regexp.QuoteMeta(LoadMarker) + `[ \t]*$`)
)

// LoaderCall is the statement inserted into the host's init routine.
const LoaderCall = "loadEmbeddedScripts();"

// Report says which of the two insertions actually landed. A document
// missing an anchor is still written, but callers are expected to warn
// loudly: a half-patched document either never registers its scripts or
// registers them without ever loading them.
type Report struct {
	DataInjected bool // data literal + loader routine inserted
	CallInjected bool // loadEmbeddedScripts() call inserted
	UsedMarkers  bool // explicit markers found (vs legacy anchors)
}

// Complete reports whether both insertions were applied.
func (r Report) Complete() bool {
	return r.DataInjected && r.CallInjected
}

// Patcher performs the two insertions.
type Patcher struct {
	logger *zap.Logger
}

func NewPatcher(logger *zap.Logger) *Patcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Patcher{logger: logger}
}

// DataBlock renders the embedded data declaration plus the loader
// routine for the given records.
func DataBlock(records []pack.Record) (string, error) {
	if records == nil {
		records = []pack.Record{}
	}
	data, err := json.MarshalIndent(records, "        ", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize script records: %w", err)
	}
	var b strings.Builder
	b.WriteString("        // Embedded Python Scripts Data\n")
	b.WriteString("        const embeddedScripts = ")
	b.Write(data)
	b.WriteString(";\n")
	b.WriteString(loaderScript)
	b.WriteString("\n")
	return b.String(), nil
}

// Apply inserts the data block and the loader call into doc and returns
// the patched text. Every byte of doc outside the two insertion points
// is preserved. Missing anchors are recorded in the Report, not treated
// as errors.
func (p *Patcher) Apply(doc string, records []pack.Record) (string, Report, error) {
	block, err := DataBlock(records)
	if err != nil {
		return "", Report{}, err
	}

	var report Report
	report.UsedMarkers = scriptsMkrRe.MatchString(doc) || loadMkrRe.MatchString(doc)

	doc, report.DataInjected = p.insertData(doc, block)
	doc, report.CallInjected = p.insertCall(doc)

	if !report.DataInjected {
		p.logger.Warn("script data anchor not found; embedded scripts were not inserted")
	}
	if !report.CallInjected {
		p.logger.Warn("loader call anchor not found; loadEmbeddedScripts() will never run")
	}
	return doc, report, nil
}

// insertData places the data block at the explicit scripts marker, or
// before the legacy end-of-script anchor. Only the first occurrence is
// patched.
func (p *Patcher) insertData(doc, block string) (string, bool) {
	if loc := scriptsMkrRe.FindStringIndex(doc); loc != nil {
		return doc[:loc[0]] + block + "\n" + doc[loc[1]:], true
	}
	loc := scriptEndRe.FindStringSubmatchIndex(doc)
	if loc == nil {
		return doc, false
	}
	// Groups: [full, anchor prefix (app start + init call), closing tag].
	prefix := doc[loc[2]:loc[3]]
	closing := doc[loc[4]:loc[5]]
	return doc[:loc[0]] + block + "\n        " + prefix + closing + doc[loc[1]:], true
}

// insertCall places the loader call at the explicit load marker, or
// before the final log statement of the host's init routine.
func (p *Patcher) insertCall(doc string) (string, bool) {
	if loc := loadMkrRe.FindStringSubmatchIndex(doc); loc != nil {
		indent := doc[loc[2]:loc[3]]
		return doc[:loc[0]] + indent + LoaderCall + doc[loc[1]:], true
	}
	loc := initRe.FindStringSubmatchIndex(doc)
	if loc == nil {
		return doc, false
	}
	body := doc[loc[2]:loc[3]]
	logStmt := doc[loc[4]:loc[5]]
	return doc[:loc[0]] + body + LoaderCall + "\n            " + logStmt + doc[loc[1]:], true
}
