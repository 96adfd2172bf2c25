package port

import "mvcscan/internal/domain"

type Chunker interface {
	Chunk(fileName, source string) ([]domain.Chunk, error)

	Classify(path string) domain.Dialect
}

type RouteExtractor interface {
	Routes(fileName, source string) ([]domain.RouteEntry, error)
}
