package chunker

import (
	"path/filepath"
	"strings"

	"mvcscan/internal/domain"
)

// Classifier maps a file name to its dialect by extension alone.
type Classifier struct {
	byExt map[string]domain.Dialect
}

func NewClassifier(structured, template, script []string) *Classifier {
	c := &Classifier{byExt: make(map[string]domain.Dialect)}
	c.register(structured, domain.DialectStructured)
	c.register(template, domain.DialectTemplate)
	c.register(script, domain.DialectScript)
	return c
}

func DefaultClassifier() *Classifier {
	return NewClassifier([]string{".cs"}, []string{".cshtml"}, []string{".js"})
}

func (c *Classifier) register(exts []string, d domain.Dialect) {
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.byExt[ext] = d
	}
}

func (c *Classifier) Classify(path string) domain.Dialect {
	ext := strings.ToLower(filepath.Ext(path))
	if d, ok := c.byExt[ext]; ok {
		return d
	}
	return domain.DialectUnsupported
}
