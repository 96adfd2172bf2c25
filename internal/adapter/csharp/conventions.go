package csharp

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"mvcscan/internal/domain"
)

// Conventions holds the naming rules that decide what a type or member means
// in an MVC application.
type Conventions struct {
	ControllerSuffix      string
	PersistenceMarker     string
	CollectionMarker      string
	TemplateExtension     string
	ModelSuffixes         []string
	ValidationAnnotations []string
}

func DefaultConventions() Conventions {
	return Conventions{
		ControllerSuffix:  "Controller",
		PersistenceMarker: "DbContext",
		CollectionMarker:  "DbSet",
		TemplateExtension: "cshtml",
		ModelSuffixes:     []string{"ViewModel", "Model"},
		ValidationAnnotations: []string{
			"Required", "Range", "StringLength", "MaxLength",
			"MinLength", "RegularExpression", "EmailAddress",
		},
	}
}

// Hash fingerprints the conventions so stored results can be invalidated
// when they change.
func (c Conventions) Hash() string {
	parts := []string{
		c.ControllerSuffix,
		c.PersistenceMarker,
		c.CollectionMarker,
		c.TemplateExtension,
		strings.Join(c.ModelSuffixes, ","),
		strings.Join(c.ValidationAnnotations, ","),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:8])
}

var verbAttributes = []struct {
	name string
	verb string
}{
	{"HttpGet", "GET"},
	{"HttpPost", "POST"},
	{"HttpPut", "PUT"},
	{"HttpDelete", "DELETE"},
	{"HttpPatch", "PATCH"},
}

var sourceAttributes = []struct {
	name   string
	source string
}{
	{"FromBody", domain.SourceBody},
	{"FromQuery", domain.SourceQuery},
	{"FromRoute", domain.SourceRoute},
	{"FromForm", domain.SourceForm},
}

// attributeName drops an optional Attribute suffix: [HttpPostAttribute] and
// [HttpPost] are the same thing to the compiler.
func attributeName(name string) string {
	if trimmed := strings.TrimSuffix(name, "Attribute"); trimmed != "" {
		return trimmed
	}
	return name
}

func (c Conventions) IsController(t *Tree, typeID NodeID) bool {
	n := t.Node(typeID)
	if n == nil || n.Kind != KindType || c.ControllerSuffix == "" {
		return false
	}
	if strings.HasSuffix(n.Name, c.ControllerSuffix) {
		return true
	}
	return c.baseTypeContains(t, typeID, c.ControllerSuffix)
}

// IsPersistenceContext is only meaningful for types that are not controllers.
func (c Conventions) IsPersistenceContext(t *Tree, typeID NodeID) bool {
	if c.PersistenceMarker == "" {
		return false
	}
	return c.baseTypeContains(t, typeID, c.PersistenceMarker)
}

func (c Conventions) baseTypeContains(t *Tree, typeID NodeID, marker string) bool {
	for _, b := range t.ChildrenOf(typeID, KindBaseType) {
		if strings.Contains(t.Nodes[b].TypeText, marker) {
			return true
		}
	}
	return false
}

// ControllerName strips the controller suffix once from the end of name.
func (c Conventions) ControllerName(name string) string {
	return strings.TrimSuffix(name, c.ControllerSuffix)
}

// PublicMethods returns the type's own public methods in declaration order.
func (c Conventions) PublicMethods(t *Tree, typeID NodeID) []NodeID {
	var out []NodeID
	for _, m := range t.ChildrenOf(typeID, KindMethod) {
		if t.HasModifier(m, "public") {
			out = append(out, m)
		}
	}
	return out
}

func (c Conventions) ResolveVerb(t *Tree, methodID NodeID) string {
	for _, a := range t.ChildrenOf(methodID, KindAttribute) {
		name := attributeName(t.Nodes[a].Name)
		for _, v := range verbAttributes {
			if name == v.name {
				return v.verb
			}
		}
	}
	return "GET"
}

// ResolveRoute returns the literal of a Route attribute on the method, or the
// conventional /<controller>/<action> path.
func (c Conventions) ResolveRoute(t *Tree, methodID NodeID, controller string) string {
	for _, a := range t.ChildrenOf(methodID, KindAttribute) {
		attr := t.Nodes[a]
		if attributeName(attr.Name) == "Route" && attr.HasLiteral {
			return attr.Literal
		}
	}
	return "/" + c.ControllerName(controller) + "/" + t.Nodes[methodID].Name
}

func (c Conventions) AreaOf(t *Tree, typeID NodeID) string {
	for _, a := range t.ChildrenOf(typeID, KindAttribute) {
		attr := t.Nodes[a]
		if attributeName(attr.Name) == "Area" && attr.HasLiteral {
			return attr.Literal
		}
	}
	return ""
}

func (c Conventions) ParameterSource(t *Tree, paramID NodeID) string {
	attrs := t.ChildrenOf(paramID, KindAttribute)
	for _, s := range sourceAttributes {
		for _, a := range attrs {
			if attributeName(t.Nodes[a].Name) == s.name {
				return s.source
			}
		}
	}
	return domain.SourceUnknown
}

func (c Conventions) Parameters(t *Tree, methodID NodeID) []domain.ParameterInfo {
	var out []domain.ParameterInfo
	for _, p := range t.ChildrenOf(methodID, KindParameter) {
		out = append(out, domain.ParameterInfo{
			Name:   t.Nodes[p].Name,
			Type:   t.Nodes[p].TypeText,
			Source: c.ParameterSource(t, p),
		})
	}
	return out
}

// Validations lists the recognized validation attributes placed on the
// type's properties, distinct, in first-seen order.
func (c Conventions) Validations(t *Tree, typeID NodeID) []string {
	known := make(map[string]bool, len(c.ValidationAnnotations))
	for _, v := range c.ValidationAnnotations {
		known[v] = true
	}

	var out []string
	seen := make(map[string]bool)
	for _, p := range t.ChildrenOf(typeID, KindProperty) {
		for _, a := range t.ChildrenOf(p, KindAttribute) {
			name := attributeName(t.Nodes[a].Name)
			if known[name] && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// Calls returns the distinct callee expressions of a method in first-seen order.
func (c Conventions) Calls(t *Tree, methodID NodeID) []string {
	var out []string
	seen := make(map[string]bool)
	for _, inv := range t.ChildrenOf(methodID, KindInvocation) {
		name := t.Nodes[inv].Name
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func (c Conventions) Properties(t *Tree, typeID NodeID) []string {
	var out []string
	for _, p := range t.ChildrenOf(typeID, KindProperty) {
		out = append(out, t.Nodes[p].Name)
	}
	return out
}

// CollectionProperties returns the names of properties typed as a persistence
// collection, such as DbSet<Order>.
func (c Conventions) CollectionProperties(t *Tree, typeID NodeID) []string {
	var out []string
	for _, p := range t.ChildrenOf(typeID, KindProperty) {
		if c.CollectionMarker != "" && strings.HasPrefix(t.Nodes[p].TypeText, c.CollectionMarker) {
			out = append(out, t.Nodes[p].Name)
		}
	}
	return out
}

func (c Conventions) ViewPath(controller, action string) string {
	return "Views/" + c.ControllerName(controller) + "/" + action + "." + c.TemplateExtension
}

// ViewModelParam returns the type of the first parameter named like a model,
// or "".
func (c Conventions) ViewModelParam(t *Tree, methodID NodeID) string {
	for _, p := range t.ChildrenOf(methodID, KindParameter) {
		typ := t.Nodes[p].TypeText
		for _, suffix := range c.ModelSuffixes {
			if suffix != "" && strings.HasSuffix(typ, suffix) {
				return typ
			}
		}
	}
	return ""
}
