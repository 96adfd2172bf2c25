package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvcscan/internal/domain"
)

const paymentScript = `function init(opts) {
    if (opts) { console.log(opts); }
}

$.ajax({ url: '/api/pay', type: 'post', data: {} });

$('#btnSave').on('click', function () { init(); });
`

func TestScript_AllThreeFamilies(t *testing.T) {
	chunks, err := newTestChunker().Chunk("wwwroot/js/payment.js", paymentScript)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	fn := chunks[0]
	assert.Equal(t, "JS.payment.init", fn.ID)
	assert.Equal(t, domain.KindScriptFunction, fn.Kind)
	assert.Equal(t, "function init(opts) {\n    if (opts) { console.log(opts); }\n}", fn.Content)
	assert.Equal(t, "init", fn.Metadata.MethodName)
	assert.Equal(t, 1, fn.Metadata.LineStart)
	assert.Equal(t, 3, fn.Metadata.LineEnd)

	ajax := chunks[1]
	assert.Equal(t, "JS.payment.ajax._api_pay", ajax.ID)
	assert.Equal(t, domain.KindScriptAsyncCall, ajax.Kind)
	assert.Equal(t, []string{"/api/pay"}, ajax.Metadata.AjaxEndpoints)
	assert.Equal(t, "POST", ajax.Metadata.HTTPMethod)

	ev := chunks[2]
	assert.Equal(t, "JS.payment.event._btnSave.click", ev.ID)
	assert.Equal(t, domain.KindScriptEventHandler, ev.Kind)
	assert.Equal(t, []string{"#btnSave click"}, ev.Metadata.EventHandlers)
	assert.Equal(t, "javascript", ev.Metadata.Language)
}

func TestScript_VariableFunction(t *testing.T) {
	units, err := NewScriptExtractor().Extract("app.js", "var save = function (a, b) { return a + b; };\nconst load = function() { };")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "save", units[0].Name)
	assert.Equal(t, "var save = function (a, b) { return a + b; }", units[0].Content)
	assert.Equal(t, "load", units[1].Name)
}

func TestScript_UnbalancedFunctionFallsBack(t *testing.T) {
	src := "function broken() {" + strings.Repeat("x", 800)
	units, err := NewScriptExtractor().Extract("app.js", src)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Len(t, units[0].Content, 500)
	assert.True(t, strings.HasPrefix(units[0].Content, "function broken() {"))
}

func TestScript_AjaxVariants(t *testing.T) {
	src := `$.ajax({ method: "GET", url: "/api/orders?page=1" });
$.get('/api/customers', function (d) {});
$.post("/api/orders", payload);
$.getJSON('/api/stats');
$.ajax({ url: '/api/untyped' });
`
	units, err := NewScriptExtractor().Extract("orders.js", src)
	require.NoError(t, err)
	require.Len(t, units, 4)

	assert.Equal(t, "ajax._api_orders_page_1", units[0].Name)
	assert.Equal(t, "GET", units[0].Meta.HTTPMethod)
	assert.Equal(t, []string{"/api/orders?page=1"}, units[0].Meta.AjaxEndpoints)
	assert.Equal(t, "GET", units[1].Meta.HTTPMethod)
	assert.Equal(t, []string{"/api/customers"}, units[1].Meta.AjaxEndpoints)
	assert.Equal(t, "POST", units[2].Meta.HTTPMethod)
	assert.Equal(t, "GET", units[3].Meta.HTTPMethod)
	assert.Equal(t, []string{"/api/stats"}, units[3].Meta.AjaxEndpoints)
}

func TestScript_EventShorthands(t *testing.T) {
	src := `$('.row').on('dblclick', edit);
$("#form").submit(function (e) { e.preventDefault(); });
$('#btn').click();
`
	units, err := NewScriptExtractor().Extract("grid.js", src)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "event._row.dblclick", units[0].Name)
	assert.Equal(t, "event._form.submit", units[1].Name)
	assert.Equal(t, []string{"#form submit"}, units[1].Meta.EventHandlers)
}

func TestScript_Empty(t *testing.T) {
	units, err := NewScriptExtractor().Extract("empty.js", "")
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "_api_v1_orders__id_", sanitizeID("/api/v1/orders/{id}"))
	assert.Equal(t, "abc_123", sanitizeID("abc_123"))
}
