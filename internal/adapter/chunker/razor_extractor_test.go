package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvcscan/internal/domain"
)

const paymentView = `@model Shop.Models.PaymentViewModel
@{
    ViewBag.Title = "Pay";
}
@using (Html.BeginForm("Save", "Payment", FormMethod.Post))
{
    @Html.Partial("_Summary")
    @{ Html.RenderPartial("_Footer", Model); }
}
<partial name="_Help" />

@section Scripts {
    <script src="~/js/payment.js"></script>
}
`

func TestRazor_Scenario(t *testing.T) {
	chunks, err := newTestChunker().Chunk("Views/Payment/Save.cshtml", "@model PaymentViewModel\n@Html.Partial(\"_Summary\")\n")
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	view := chunks[0]
	assert.Equal(t, "View.Save", view.ID)
	assert.Equal(t, domain.KindViewTemplate, view.Kind)
	require.NotNil(t, view.Metadata.ViewModel)
	assert.Equal(t, "PaymentViewModel", view.Metadata.ViewModel.Name)
	assert.Equal(t, []string{"_Summary"}, view.Metadata.PartialsUsed)
	assert.Equal(t, "razor", view.Metadata.Language)
}

func TestRazor_FullTemplate(t *testing.T) {
	units, err := NewRazorExtractor().Extract("Save.cshtml", paymentView)
	require.NoError(t, err)
	require.Len(t, units, 1)

	meta := units[0].Meta
	require.NotNil(t, meta.ViewModel)
	assert.Equal(t, "Shop.Models.PaymentViewModel", meta.ViewModel.Name)
	assert.Equal(t, []string{"_Summary", "_Footer", "_Help"}, meta.PartialsUsed)
	assert.Equal(t, []string{"~/js/payment.js"}, meta.Scripts)
	assert.Equal(t, []domain.FormInfo{{Action: "Save", Controller: "Payment", Method: "POST"}}, meta.Forms)
	assert.Equal(t, paymentView, units[0].Content)
	assert.Equal(t, 1, units[0].StartLine)
	assert.Equal(t, 14, units[0].EndLine)
}

func TestRazor_NoModel(t *testing.T) {
	units, err := NewRazorExtractor().Extract("About.cshtml", "<h1>About</h1>\n")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Nil(t, units[0].Meta.ViewModel)
	assert.Empty(t, units[0].Meta.PartialsUsed)
}

func TestRazor_RepeatedPartialsKept(t *testing.T) {
	src := `@Html.Partial("_Row") @Html.Partial("_Row")`
	units, err := NewRazorExtractor().Extract("List.cshtml", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"_Row", "_Row"}, units[0].Meta.PartialsUsed)
}

func TestRazor_FormDefaultsToPost(t *testing.T) {
	units, err := NewRazorExtractor().Extract("Edit.cshtml", `@using (Html.BeginForm("Update", "Orders")) { }`)
	require.NoError(t, err)
	assert.Equal(t, []domain.FormInfo{{Action: "Update", Controller: "Orders", Method: "POST"}}, units[0].Meta.Forms)

	units, err = NewRazorExtractor().Extract("Find.cshtml", `@using (Html.BeginForm("Find", "Orders", FormMethod.Get)) { }`)
	require.NoError(t, err)
	assert.Equal(t, "GET", units[0].Meta.Forms[0].Method)
}

func TestRazor_BlankTemplateYieldsNothing(t *testing.T) {
	units, err := NewRazorExtractor().Extract("Empty.cshtml", " \n\t\n")
	require.NoError(t, err)
	assert.Empty(t, units)
}
