package routemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvcscan/internal/adapter/chunker"
	"mvcscan/internal/adapter/csharp"
	"mvcscan/internal/domain"
)

func newTestBuilder() *Builder {
	return NewBuilder(chunker.DefaultClassifier(), csharp.NewParser(), csharp.DefaultConventions())
}

func TestRoutes_AreaPrefix(t *testing.T) {
	src := `namespace Shop.Areas.Admin.Controllers
{
    [Area("Admin")]
    public class UsersController : Controller
    {
        public IActionResult Index() => View();

        [HttpPost]
        public IActionResult Edit(int id, UserViewModel model) => View(model);
    }
}
`
	routes, err := newTestBuilder().Routes("UsersController.cs", src)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	assert.Equal(t, domain.RouteEntry{
		Route:      "/Admin/Users/Index",
		Controller: "UsersController",
		Action:     "Index",
		HTTPMethod: "GET",
		ViewPath:   "Views/Users/Index.cshtml",
	}, routes[0])

	assert.Equal(t, "/Admin/Users/Edit", routes[1].Route)
	assert.Equal(t, "POST", routes[1].HTTPMethod)
	assert.Equal(t, "UserViewModel", routes[1].ViewModel)
}

func TestRoutes_ExplicitRoute(t *testing.T) {
	src := `public class PaymentController : Controller
{
    [HttpPost, Route("/payments")]
    public IActionResult Save(PaymentViewModel model) => View();
}
`
	routes, err := newTestBuilder().Routes("PaymentController.cs", src)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "/payments", routes[0].Route)
	assert.Equal(t, "POST", routes[0].HTTPMethod)
	assert.Equal(t, "Views/Payment/Save.cshtml", routes[0].ViewPath)
	assert.Equal(t, "PaymentViewModel", routes[0].ViewModel)
}

func TestRoutes_NoControllers(t *testing.T) {
	src := `public static class StringHelper
{
    public static string Trim(string s) => s.Trim();
}
`
	routes, err := newTestBuilder().Routes("StringHelper.cs", src)
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestRoutes_NonStructuredFile(t *testing.T) {
	routes, err := newTestBuilder().Routes("Index.cshtml", "@model X")
	require.NoError(t, err)
	assert.Nil(t, routes)
}
