package chunker

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"mvcscan/internal/domain"
)

const functionFallbackRunes = 500

var (
	jsFunctionRe      = regexp.MustCompile(`(?:function\s+(\w+)|(?:var|let|const)\s+(\w+)\s*=\s*function)\s*\(([^)]*)\)\s*\{`)
	jsAjaxURLFirstRe  = regexp.MustCompile(`\$\.ajax\s*\(\s*\{[^}]*url\s*:\s*["']([^"']+)["'][^}]*(?:type|method)\s*:\s*["'](\w+)["']`)
	jsAjaxVerbFirstRe = regexp.MustCompile(`\$\.ajax\s*\(\s*\{[^}]*(?:type|method)\s*:\s*["'](\w+)["'][^}]*url\s*:\s*["']([^"']+)["']`)
	jsAjaxShortRe     = regexp.MustCompile(`\$\.(getJSON|get|post)\s*\(\s*["']([^"']+)["']`)
	jsEventOnRe       = regexp.MustCompile(`\$\(\s*["']([^"']+)["']\s*\)\.on\s*\(\s*["'](\w+)["']`)
	jsEventShortRe    = regexp.MustCompile(`\$\(\s*["']([^"']+)["']\s*\)\.(click|dblclick|change|submit|input|keyup|keydown|keypress|focus|blur|hover|mouseenter|mouseleave)\s*\(\s*[^)\s]`)
	unsafeIDCharsRe   = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// ScriptExtractor runs three independent pattern families over client
// script: named functions, async calls and event bindings. Matches are never
// merged across families.
type ScriptExtractor struct{}

func NewScriptExtractor() *ScriptExtractor { return &ScriptExtractor{} }

func (e *ScriptExtractor) Dialect() domain.Dialect { return domain.DialectScript }

func (e *ScriptExtractor) Extract(fileName, source string) ([]CodeUnit, error) {
	var units []CodeUnit
	units = append(units, e.functions(source)...)
	units = append(units, e.asyncCalls(source)...)
	units = append(units, e.events(source)...)
	return units, nil
}

func (e *ScriptExtractor) functions(source string) []CodeUnit {
	var units []CodeUnit
	for _, m := range jsFunctionRe.FindAllStringSubmatchIndex(source, -1) {
		name := group(source, m, 1)
		if name == "" {
			name = group(source, m, 2)
		}
		body := functionBody(source, m[0])
		units = append(units, CodeUnit{
			Kind:      domain.KindScriptFunction,
			Name:      name,
			Content:   body,
			StartLine: lineAt(source, m[0]),
			EndLine:   lineAt(source, m[0]+len(body)),
			Meta:      domain.ChunkMetadata{MethodName: name},
		})
	}
	return units
}

type asyncMatch struct {
	start, end int
	url, verb  string
}

func (e *ScriptExtractor) asyncCalls(source string) []CodeUnit {
	seen := make(map[int]bool)
	var found []asyncMatch
	collect := func(start, end int, url, verb string) {
		if seen[start] {
			return
		}
		seen[start] = true
		found = append(found, asyncMatch{start, end, url, strings.ToUpper(verb)})
	}

	for _, m := range jsAjaxURLFirstRe.FindAllStringSubmatchIndex(source, -1) {
		collect(m[0], m[1], group(source, m, 1), group(source, m, 2))
	}
	for _, m := range jsAjaxVerbFirstRe.FindAllStringSubmatchIndex(source, -1) {
		collect(m[0], m[1], group(source, m, 2), group(source, m, 1))
	}
	for _, m := range jsAjaxShortRe.FindAllStringSubmatchIndex(source, -1) {
		verb := "GET"
		if group(source, m, 1) == "post" {
			verb = "POST"
		}
		collect(m[0], m[1], group(source, m, 2), verb)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].start < found[j].start })

	var units []CodeUnit
	for _, f := range found {
		units = append(units, CodeUnit{
			Kind:      domain.KindScriptAsyncCall,
			Name:      "ajax." + sanitizeID(f.url),
			Content:   source[f.start:f.end],
			StartLine: lineAt(source, f.start),
			EndLine:   lineAt(source, f.end),
			Meta: domain.ChunkMetadata{
				AjaxEndpoints: []string{f.url},
				HTTPMethod:    f.verb,
			},
		})
	}
	return units
}

type eventMatch struct {
	start, end      int
	selector, event string
}

func (e *ScriptExtractor) events(source string) []CodeUnit {
	var found []eventMatch
	for _, m := range jsEventOnRe.FindAllStringSubmatchIndex(source, -1) {
		found = append(found, eventMatch{m[0], m[1], group(source, m, 1), group(source, m, 2)})
	}
	for _, m := range jsEventShortRe.FindAllStringSubmatchIndex(source, -1) {
		// drop the first argument character the pattern needed to see
		found = append(found, eventMatch{m[0], m[1] - 1, group(source, m, 1), group(source, m, 2)})
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })

	var units []CodeUnit
	for _, f := range found {
		units = append(units, CodeUnit{
			Kind:      domain.KindScriptEventHandler,
			Name:      "event." + sanitizeID(f.selector) + "." + f.event,
			Content:   strings.TrimSpace(source[f.start:f.end]),
			StartLine: lineAt(source, f.start),
			EndLine:   lineAt(source, f.end),
			Meta: domain.ChunkMetadata{
				EventHandlers: []string{f.selector + " " + f.event},
			},
		})
	}
	return units
}

// functionBody returns the text from start through the brace that closes the
// first one opened. Unbalanced input falls back to a fixed-size prefix.
func functionBody(source string, start int) string {
	depth := 0
	opened := false
	for i := start; i < len(source); i++ {
		switch source[i] {
		case '{':
			depth++
			opened = true
		case '}':
			depth--
		}
		if opened && depth == 0 {
			return source[start : i+1]
		}
	}

	end := start
	for n := 0; n < functionFallbackRunes && end < len(source); n++ {
		_, size := utf8.DecodeRuneInString(source[end:])
		end += size
	}
	return source[start:end]
}

func group(source string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return source[m[2*n]:m[2*n+1]]
}

func sanitizeID(s string) string {
	return unsafeIDCharsRe.ReplaceAllString(s, "_")
}

func baseName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// lineAt returns the 1-based line containing byte offset.
func lineAt(source string, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return strings.Count(source[:offset], "\n") + 1
}
