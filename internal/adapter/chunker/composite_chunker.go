package chunker

import (
	"fmt"
	"path/filepath"

	"mvcscan/internal/domain"
)

// CompositeChunker classifies a file, hands it to the extractor for its
// dialect and turns the resulting units into validated chunks.
type CompositeChunker struct {
	classifier *Classifier
	extractors map[domain.Dialect]Extractor
}

func NewCompositeChunker(classifier *Classifier, extractors ...Extractor) *CompositeChunker {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	byDialect := make(map[domain.Dialect]Extractor, len(extractors))
	for _, e := range extractors {
		byDialect[e.Dialect()] = e
	}
	return &CompositeChunker{
		classifier: classifier,
		extractors: byDialect,
	}
}

func (c *CompositeChunker) Classify(path string) domain.Dialect {
	return c.classifier.Classify(path)
}

// Chunk returns no chunks and no error for unsupported files. A unit that
// fails validation aborts the whole file.
func (c *CompositeChunker) Chunk(fileName, source string) ([]domain.Chunk, error) {
	dialect := c.classifier.Classify(fileName)
	extractor, ok := c.extractors[dialect]
	if !ok {
		return nil, nil
	}

	units, err := extractor.Extract(fileName, source)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, 0, len(units))
	for _, unit := range units {
		chunk := c.createChunk(fileName, dialect, unit)
		if err := domain.ValidateChunk(chunk); err != nil {
			return nil, fmt.Errorf("%s: %w", fileName, err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func (c *CompositeChunker) createChunk(fileName string, dialect domain.Dialect, unit CodeUnit) domain.Chunk {
	meta := unit.Meta
	meta.Language = dialect.String()
	meta.LineStart = unit.StartLine
	meta.LineEnd = unit.EndLine

	return domain.Chunk{
		ID:       generateChunkID(fileName, unit),
		File:     filepath.Base(fileName),
		Kind:     unit.Kind,
		Content:  unit.Content,
		Metadata: meta,
	}
}

func generateChunkID(fileName string, unit CodeUnit) string {
	switch unit.Kind {
	case domain.KindActionMethod:
		return unit.Meta.Controller + "." + unit.Meta.Action + "." + unit.Meta.HTTPMethod
	case domain.KindViewModel:
		return unit.Name + ".ViewModel"
	case domain.KindPersistenceModel:
		return unit.Name + ".DbContext"
	case domain.KindViewTemplate, domain.KindViewPartial:
		return "View." + baseName(fileName)
	case domain.KindScriptFunction, domain.KindScriptAsyncCall, domain.KindScriptEventHandler:
		return "JS." + baseName(fileName) + "." + unit.Name
	default:
		return string(unit.Kind) + "." + unit.Name
	}
}
