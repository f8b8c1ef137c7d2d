package oracle

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/graph"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names: nodes[3].label rather than Nodes[3].Label.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateFragment checks a fragment before it is merged.
//
// Every node needs an id, a label and a known type, and ids must be unique
// within the fragment. Every edge endpoint must name a node of the fragment
// or of surviving, the part of the current graph that outlives the merge:
// empty for regenerate, the full graph for dive, the pruned graph for
// refine. A regenerate fragment must not be empty.
func ValidateFragment(kind Kind, fragment, surviving graph.Graph) error {
	if kind == KindRegenerate && len(fragment.Nodes) == 0 {
		return errs.New(errs.ErrCodeInvalidFragment, "regenerate returned no nodes")
	}

	if err := validate.Struct(fragment); err != nil {
		return errs.New(errs.ErrCodeInvalidFragment, "%s", formatValidationError(err))
	}

	known := surviving.IDSet()
	seen := make(map[string]struct{}, len(fragment.Nodes))
	for _, n := range fragment.Nodes {
		if _, dup := seen[n.ID]; dup {
			return errs.New(errs.ErrCodeInvalidFragment, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
		known[n.ID] = struct{}{}
	}

	for i, e := range fragment.Edges {
		if _, ok := known[e.Source]; !ok {
			return errs.New(errs.ErrCodeInvalidFragment, "edges[%d] %s->%s: unknown source node", i, e.Source, e.Target)
		}
		if _, ok := known[e.Target]; !ok {
			return errs.New(errs.ErrCodeInvalidFragment, "edges[%d] %s->%s: unknown target node", i, e.Source, e.Target)
		}
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s (got %q)", field, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
