package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mvcscan/internal/domain"
)

func TestClassify(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		path string
		want domain.Dialect
	}{
		{"Controllers/HomeController.cs", domain.DialectStructured},
		{"Views/Home/Index.cshtml", domain.DialectTemplate},
		{"wwwroot/js/site.js", domain.DialectScript},
		{"LEGACY.CS", domain.DialectStructured},
		{"Index.CSHTML", domain.DialectTemplate},
		{"notes.txt", domain.DialectUnsupported},
		{"Makefile", domain.DialectUnsupported},
		{"site.min.js.map", domain.DialectUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.path))
		})
	}
}

func TestNewClassifier_NormalizesExtensions(t *testing.T) {
	c := NewClassifier([]string{"CS"}, []string{" .Razor "}, nil)
	assert.Equal(t, domain.DialectStructured, c.Classify("a.cs"))
	assert.Equal(t, domain.DialectTemplate, c.Classify("a.razor"))
	assert.Equal(t, domain.DialectUnsupported, c.Classify("a.js"))
}
