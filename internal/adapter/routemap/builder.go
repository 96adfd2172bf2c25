package routemap

import (
	"fmt"

	"mvcscan/internal/adapter/chunker"
	"mvcscan/internal/adapter/csharp"
	"mvcscan/internal/domain"
)

// Builder derives route entries from controller-shaped types. It shares the
// conventions used for chunk extraction so the two views agree.
type Builder struct {
	classifier *chunker.Classifier
	parser     *csharp.Parser
	conv       csharp.Conventions
}

func NewBuilder(classifier *chunker.Classifier, parser *csharp.Parser, conv csharp.Conventions) *Builder {
	if classifier == nil {
		classifier = chunker.DefaultClassifier()
	}
	return &Builder{classifier: classifier, parser: parser, conv: conv}
}

// Routes returns nil for anything that is not structured source.
func (b *Builder) Routes(fileName, source string) ([]domain.RouteEntry, error) {
	if b.classifier.Classify(fileName) != domain.DialectStructured {
		return nil, nil
	}

	tree, err := b.parser.Parse([]byte(source))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}

	var routes []domain.RouteEntry
	for _, typeID := range tree.Types() {
		if !b.conv.IsController(tree, typeID) {
			continue
		}
		controller := tree.Node(typeID).Name
		prefix := ""
		if area := b.conv.AreaOf(tree, typeID); area != "" {
			prefix = "/" + area
		}

		for _, m := range b.conv.PublicMethods(tree, typeID) {
			action := tree.Node(m).Name
			routes = append(routes, domain.RouteEntry{
				Route:      prefix + b.conv.ResolveRoute(tree, m, controller),
				Controller: controller,
				Action:     action,
				HTTPMethod: b.conv.ResolveVerb(tree, m),
				ViewPath:   b.conv.ViewPath(controller, action),
				ViewModel:  b.conv.ViewModelParam(tree, m),
			})
		}
	}
	return routes, nil
}
