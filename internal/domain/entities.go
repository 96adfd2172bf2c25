package domain

import "time"

// ChunkKind is the closed set of chunk categories a consumer can key on.
type ChunkKind string

const (
	KindActionMethod       ChunkKind = "action_method"
	KindViewModel          ChunkKind = "viewmodel"
	KindPersistenceModel   ChunkKind = "persistence_model"
	KindViewTemplate       ChunkKind = "view_template"
	KindViewPartial        ChunkKind = "view_partial"
	KindScriptFunction     ChunkKind = "script_function"
	KindScriptEventHandler ChunkKind = "script_event_handler"
	KindScriptAsyncCall    ChunkKind = "script_async_call"
	KindInterfaceType      ChunkKind = "interface_type"
	KindConfig             ChunkKind = "config"
)

// IsScript reports whether k is one of the client-script kinds.
func (k ChunkKind) IsScript() bool {
	return k == KindScriptFunction || k == KindScriptEventHandler || k == KindScriptAsyncCall
}

// IsView reports whether k is a template kind.
func (k ChunkKind) IsView() bool {
	return k == KindViewTemplate || k == KindViewPartial
}

// Dialect selects one of the extraction pipelines.
type Dialect uint8

const (
	DialectUnsupported Dialect = iota
	DialectStructured
	DialectTemplate
	DialectScript
)

// String returns the language tag recorded in chunk metadata.
func (d Dialect) String() string {
	switch d {
	case DialectStructured:
		return "csharp"
	case DialectTemplate:
		return "razor"
	case DialectScript:
		return "javascript"
	default:
		return "unsupported"
	}
}

type Chunk struct {
	ID       string        `json:"chunkId"`
	File     string        `json:"file"`
	Kind     ChunkKind     `json:"type"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

type ChunkMetadata struct {
	Controller    string          `json:"controller,omitempty"`
	Action        string          `json:"action,omitempty"`
	HTTPMethod    string          `json:"httpMethod,omitempty"`
	Route         string          `json:"route,omitempty"`
	Namespace     string          `json:"namespace,omitempty"`
	ClassName     string          `json:"className,omitempty"`
	MethodName    string          `json:"methodName,omitempty"`
	Parameters    []ParameterInfo `json:"parameters,omitempty"`
	ViewModel     *ViewModelInfo  `json:"viewModel,omitempty"`
	Calls         []string        `json:"calls,omitempty"`
	CalledBy      []string        `json:"calledBy,omitempty"`
	DBTables      []string        `json:"dbTables,omitempty"`
	ViewPath      string          `json:"viewPath,omitempty"`
	PartialsUsed  []string        `json:"partialsUsed,omitempty"`
	Scripts       []string        `json:"scripts,omitempty"`
	Forms         []FormInfo      `json:"forms,omitempty"`
	AjaxEndpoints []string        `json:"ajaxEndpoints,omitempty"`
	EventHandlers []string        `json:"eventHandlers,omitempty"`
	Validations   []string        `json:"validations,omitempty"`
	Module        string          `json:"module,omitempty"`
	Language      string          `json:"language,omitempty"`
	LineStart     int             `json:"lineStart,omitempty"`
	LineEnd       int             `json:"lineEnd,omitempty"`
}

// Parameter binding sources.
const (
	SourceBody    = "body"
	SourceQuery   = "query"
	SourceRoute   = "route"
	SourceForm    = "form"
	SourceUnknown = "unknown"
)

type ParameterInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Source string `json:"source"`
}

type ViewModelInfo struct {
	Name       string   `json:"name"`
	Properties []string `json:"properties,omitempty"`
}

// FormInfo is an Html.BeginForm target found in a template.
type FormInfo struct {
	Action     string `json:"action"`
	Controller string `json:"controller"`
	Method     string `json:"method"`
}

type RouteEntry struct {
	Route      string `json:"route"`
	Controller string `json:"controller"`
	Action     string `json:"action"`
	HTTPMethod string `json:"httpMethod"`
	ViewPath   string `json:"viewPath,omitempty"`
	ViewModel  string `json:"viewModel,omitempty"`
}

type ParseStats struct {
	TotalFiles      int   `json:"totalFiles"`
	TotalChunks     int   `json:"totalChunks"`
	ControllerCount int   `json:"controllerCount"`
	ViewCount       int   `json:"viewCount"`
	ScriptCount     int   `json:"jsFileCount"`
	ParsedAtUTC     int64 `json:"parsedAtUtc"`
}

// NewParseStats aggregates counters over a finished chunk list.
func NewParseStats(chunks []Chunk, now time.Time) ParseStats {
	files := make(map[string]struct{})
	stats := ParseStats{
		TotalChunks: len(chunks),
		ParsedAtUTC: now.UTC().Unix(),
	}
	for _, c := range chunks {
		files[c.File] = struct{}{}
		switch {
		case c.Kind == KindActionMethod:
			stats.ControllerCount++
		case c.Kind.IsView():
			stats.ViewCount++
		case c.Kind.IsScript():
			stats.ScriptCount++
		}
	}
	stats.TotalFiles = len(files)
	return stats
}
