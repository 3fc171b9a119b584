package objectstore

import (
	"fmt"

	"github.com/noahhai/DSInternals/pkg/interfaces"
)

// IndexNames are the fixed index names this reference storage engine
// exposes for the attributes the Directory Agent looks up by. spec.md §6
// treats "the schema catalogue" as an external collaborator with
// attribute→index-name and class-name→id resolution; schema modification
// stays a Non-goal, so this catalogue is fixed at construction.
const (
	IndexSAMAccountName = "idx_sAMAccountName"
	IndexSAMAccountType = "idx_sAMAccountType"
	IndexObjectCategory = "idx_objectCategory"
	IndexObjectSid      = "idx_objectSid"
	IndexObjectGUID     = "idx_objectGUID"
)

// staticSchema is a read-only, fixed-at-construction Schema
// implementation.
type staticSchema struct {
	indexByAttr map[interfaces.AttributeID]string
	classByName map[string]int32
}

// NewStaticSchema builds the fixed schema catalogue this reference store
// uses. classes maps class names (e.g. "person", "organizationalUnit",
// "secret", "msKds-ProvRootKey") to their class ids.
func NewStaticSchema(classes map[string]int32) interfaces.Schema {
	return &staticSchema{
		indexByAttr: map[interfaces.AttributeID]string{
			interfaces.AttrSAMAccountName: IndexSAMAccountName,
			interfaces.AttrSAMAccountType: IndexSAMAccountType,
			interfaces.AttrObjectCategory: IndexObjectCategory,
			interfaces.AttrObjectSid:      IndexObjectSid,
			interfaces.AttrObjectGUID:     IndexObjectGUID,
		},
		classByName: classes,
	}
}

func (s *staticSchema) FindIndexName(attr interfaces.AttributeID) (string, error) {
	name, ok := s.indexByAttr[attr]
	if !ok {
		return "", fmt.Errorf("objectstore: no index registered for attribute %s", attr)
	}
	return name, nil
}

func (s *staticSchema) FindClassID(className string) (int32, error) {
	id, ok := s.classByName[className]
	if !ok {
		return 0, fmt.Errorf("objectstore: unknown class %q", className)
	}
	return id, nil
}
