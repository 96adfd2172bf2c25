package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChunk_EmptyContent(t *testing.T) {
	chunk := Chunk{
		ID:      "Payment.Save.POST",
		File:    "PaymentController.cs",
		Kind:    KindActionMethod,
		Content: "",
	}

	err := ValidateChunk(chunk)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidChunk)
}

func TestValidateChunk_WhitespaceContent(t *testing.T) {
	chunk := Chunk{
		ID:      "Payment.Save.POST",
		File:    "PaymentController.cs",
		Kind:    KindActionMethod,
		Content: " \n\t ",
	}

	assert.ErrorIs(t, ValidateChunk(chunk), ErrInvalidChunk)
}

func TestValidateChunk_EmptyID(t *testing.T) {
	chunk := Chunk{
		ID:      "",
		File:    "PaymentController.cs",
		Kind:    KindActionMethod,
		Content: "public IActionResult Save() => View();",
	}

	err := ValidateChunk(chunk)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidChunk)
	assert.Contains(t, err.Error(), "PaymentController.cs")
}

func TestValidateChunk_Valid(t *testing.T) {
	chunk := Chunk{
		ID:       "Payment.Save.POST",
		File:     "PaymentController.cs",
		Kind:     KindActionMethod,
		Content:  "public IActionResult Save() => View();",
		Metadata: ChunkMetadata{HTTPMethod: "POST"},
	}

	assert.NoError(t, ValidateChunk(chunk))
}

func TestNewParseStats(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	chunks := []Chunk{
		{ID: "A.Index.GET", File: "AController.cs", Kind: KindActionMethod},
		{ID: "A.Save.POST", File: "AController.cs", Kind: KindActionMethod},
		{ID: "AViewModel.ViewModel", File: "AViewModel.cs", Kind: KindViewModel},
		{ID: "View.Index", File: "Index.cshtml", Kind: KindViewTemplate},
		{ID: "JS.app.init", File: "app.js", Kind: KindScriptFunction},
		{ID: "JS.app.ajax._a", File: "app.js", Kind: KindScriptAsyncCall},
		{ID: "JS.app.event._b.click", File: "app.js", Kind: KindScriptEventHandler},
	}

	stats := NewParseStats(chunks, now)

	assert.Equal(t, 4, stats.TotalFiles)
	assert.Equal(t, 7, stats.TotalChunks)
	assert.Equal(t, 2, stats.ControllerCount)
	assert.Equal(t, 1, stats.ViewCount)
	assert.Equal(t, 3, stats.ScriptCount)
	assert.Equal(t, now.Unix(), stats.ParsedAtUTC)
}

func TestNewParseStats_Empty(t *testing.T) {
	stats := NewParseStats(nil, time.Now())
	assert.Zero(t, stats.TotalFiles)
	assert.Zero(t, stats.TotalChunks)
}

func TestDialectString(t *testing.T) {
	assert.Equal(t, "csharp", DialectStructured.String())
	assert.Equal(t, "razor", DialectTemplate.String())
	assert.Equal(t, "javascript", DialectScript.String())
	assert.Equal(t, "unsupported", DialectUnsupported.String())
}
