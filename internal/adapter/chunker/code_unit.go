package chunker

import "mvcscan/internal/domain"

// CodeUnit is what an extractor finds before the assembler names it.
// Name carries the dialect-specific id tail: "init" for a script function,
// "ajax.<url>" for an async call, "event.<sel>.<evt>" for a handler. Other
// kinds are named from Meta.
type CodeUnit struct {
	Kind      domain.ChunkKind
	Name      string
	Content   string
	StartLine int
	EndLine   int
	Meta      domain.ChunkMetadata
}

type Extractor interface {
	Extract(fileName, source string) ([]CodeUnit, error)

	Dialect() domain.Dialect
}
