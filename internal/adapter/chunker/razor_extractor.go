package chunker

import (
	"regexp"
	"sort"
	"strings"

	"mvcscan/internal/domain"
)

var (
	razorModelRe   = regexp.MustCompile(`@model\s+([\w\.]+)`)
	razorFormRe    = regexp.MustCompile(`Html\.BeginForm\s*\(\s*"(\w+)"\s*,\s*"(\w+)"(?:\s*,\s*FormMethod\.(\w+))?`)
	razorPartialRe = regexp.MustCompile(`Html\.(?:Partial|RenderPartial)\s*\(\s*"([^"]+)"`)
	razorTagRe     = regexp.MustCompile(`<partial\s+name\s*=\s*"([^"]+)"`)
	razorSectionRe = regexp.MustCompile(`@section\s+Scripts\s*\{[^}]*`)
	razorScriptRe  = regexp.MustCompile(`<script[^>]*src=["']([^"']+)["']`)
)

// RazorExtractor produces one view unit per template. It scans text
// patterns; Razor is never parsed.
type RazorExtractor struct{}

func NewRazorExtractor() *RazorExtractor { return &RazorExtractor{} }

func (e *RazorExtractor) Dialect() domain.Dialect { return domain.DialectTemplate }

func (e *RazorExtractor) Extract(fileName, source string) ([]CodeUnit, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	meta := domain.ChunkMetadata{
		PartialsUsed: partials(source),
		Scripts:      sectionScripts(source),
		Forms:        forms(source),
	}
	if m := razorModelRe.FindStringSubmatch(source); m != nil {
		meta.ViewModel = &domain.ViewModelInfo{Name: m[1]}
	}

	return []CodeUnit{{
		Kind:      domain.KindViewTemplate,
		Name:      baseName(fileName),
		Content:   source,
		StartLine: 1,
		EndLine:   lineAt(source, len(strings.TrimRight(source, "\r\n"))),
		Meta:      meta,
	}}, nil
}

type offsetName struct {
	offset int
	name   string
}

// partials merges Html.Partial/RenderPartial calls and <partial> tag helpers
// in source order. Repeats are kept.
func partials(source string) []string {
	var found []offsetName
	for _, m := range razorPartialRe.FindAllStringSubmatchIndex(source, -1) {
		found = append(found, offsetName{m[0], source[m[2]:m[3]]})
	}
	for _, m := range razorTagRe.FindAllStringSubmatchIndex(source, -1) {
		found = append(found, offsetName{m[0], source[m[2]:m[3]]})
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].offset < found[j].offset })

	var out []string
	for _, f := range found {
		out = append(out, f.name)
	}
	return out
}

func sectionScripts(source string) []string {
	var out []string
	for _, section := range razorSectionRe.FindAllString(source, -1) {
		for _, m := range razorScriptRe.FindAllStringSubmatch(section, -1) {
			out = append(out, m[1])
		}
	}
	return out
}

func forms(source string) []domain.FormInfo {
	var out []domain.FormInfo
	for _, m := range razorFormRe.FindAllStringSubmatch(source, -1) {
		method := strings.ToUpper(m[3])
		if method == "" {
			method = "POST"
		}
		out = append(out, domain.FormInfo{Action: m[1], Controller: m[2], Method: method})
	}
	return out
}
