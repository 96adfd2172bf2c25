package chunker

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"mvcscan/internal/adapter/csharp"
	"mvcscan/internal/domain"
)

// CSharpExtractor emits controller actions, then view models, then
// persistence contexts, each family in document order.
type CSharpExtractor struct {
	parser *csharp.Parser
	conv   csharp.Conventions
	logger *slog.Logger
}

func NewCSharpExtractor(parser *csharp.Parser, conv csharp.Conventions, logger *slog.Logger) *CSharpExtractor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CSharpExtractor{parser: parser, conv: conv, logger: logger}
}

func (e *CSharpExtractor) Dialect() domain.Dialect { return domain.DialectStructured }

func (e *CSharpExtractor) Extract(fileName, source string) ([]CodeUnit, error) {
	tree, err := e.parser.Parse([]byte(source))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}
	if tree.SyntaxErrors > 0 {
		e.logger.Debug("recovered from syntax errors",
			slog.String("file", fileName),
			slog.Int("errors", tree.SyntaxErrors))
	}

	var controllers, models, contexts []csharp.NodeID
	for _, id := range tree.Types() {
		switch {
		case e.conv.IsController(tree, id):
			controllers = append(controllers, id)
		case e.conv.IsPersistenceContext(tree, id):
			contexts = append(contexts, id)
		default:
			models = append(models, id)
		}
	}

	var units []CodeUnit
	for _, id := range controllers {
		units = append(units, e.actions(tree, id)...)
	}
	for _, id := range models {
		units = append(units, e.viewModel(tree, id))
	}
	for _, id := range contexts {
		units = append(units, e.persistence(tree, id))
	}
	return units, nil
}

func (e *CSharpExtractor) actions(tree *csharp.Tree, typeID csharp.NodeID) []CodeUnit {
	controller := tree.Node(typeID).Name
	ns := tree.NamespaceOf(typeID)
	area := e.conv.AreaOf(tree, typeID)

	var units []CodeUnit
	for _, m := range e.conv.PublicMethods(tree, typeID) {
		method := tree.Node(m)
		units = append(units, CodeUnit{
			Kind:      domain.KindActionMethod,
			Name:      method.Name,
			Content:   strings.TrimSpace(tree.Text(m)),
			StartLine: method.StartLine,
			EndLine:   method.EndLine,
			Meta: domain.ChunkMetadata{
				Controller: controller,
				Action:     method.Name,
				HTTPMethod: e.conv.ResolveVerb(tree, m),
				Route:      e.conv.ResolveRoute(tree, m, controller),
				Namespace:  ns,
				MethodName: method.Name,
				Parameters: e.conv.Parameters(tree, m),
				Calls:      e.conv.Calls(tree, m),
				Module:     area,
			},
		})
	}
	return units
}

func (e *CSharpExtractor) viewModel(tree *csharp.Tree, typeID csharp.NodeID) CodeUnit {
	typ := tree.Node(typeID)
	return CodeUnit{
		Kind:      domain.KindViewModel,
		Name:      typ.Name,
		Content:   strings.TrimSpace(tree.Text(typeID)),
		StartLine: typ.StartLine,
		EndLine:   typ.EndLine,
		Meta: domain.ChunkMetadata{
			ClassName: typ.Name,
			Namespace: tree.NamespaceOf(typeID),
			ViewModel: &domain.ViewModelInfo{
				Name:       typ.Name,
				Properties: e.conv.Properties(tree, typeID),
			},
			Validations: e.conv.Validations(tree, typeID),
		},
	}
}

func (e *CSharpExtractor) persistence(tree *csharp.Tree, typeID csharp.NodeID) CodeUnit {
	typ := tree.Node(typeID)
	return CodeUnit{
		Kind:      domain.KindPersistenceModel,
		Name:      typ.Name,
		Content:   strings.TrimSpace(tree.Text(typeID)),
		StartLine: typ.StartLine,
		EndLine:   typ.EndLine,
		Meta: domain.ChunkMetadata{
			ClassName: typ.Name,
			Namespace: tree.NamespaceOf(typeID),
			DBTables:  e.conv.CollectionProperties(tree, typeID),
		},
	}
}
