package selection

// Request is a caller-supplied field-selection: logical field name to an
// include flag. Absent keys mean "not requested". Requests are constructed
// per call and never persisted.
type Request map[string]bool

// Projection is the storage-layer field selection derived from a Request.
// Every key is a storage name mapping either to true or to a nested
// Projection (relation child columns, or the CountKey aggregate group).
type Projection map[string]any

// Project compiles a Request into a storage Projection.
//
// The steps are applied in a fixed order:
//
//  1. Undeclared and write-only keys are ignored; by the time a request
//     reaches Project the surrounding validation layer has already rejected
//     unknown names, so leftovers are computed around, never an error.
//  2. If the request carries no meaningful field (identifier-like fields do
//     not count), the schema's default field set is substituted. This happens
//     before derived fields are resolved.
//  3. Derived fields resolve: relations to nested child-column projections,
//     counts into the CountKey group.
//  4. Identifier fields are forced to true so the storage layer can always
//     correlate rows back to identifiers.
//
// The result is a pure function of the request: same input, same output,
// no ordering dependence.
func (s *Schema) Project(req Request) Projection {
	src := req
	if !s.meaningful(req) {
		src = s.defaults
	}

	out := make(Projection, len(src)+1)
	for _, f := range s.fields {
		if f.WriteOnly {
			continue
		}
		if f.Identifier {
			out[f.Column] = true
			continue
		}
		if !src[f.Name] {
			continue
		}

		switch f.Kind {
		case KindColumn:
			out[f.Column] = true

		case KindRelation:
			child := make(Projection, len(f.Children))
			for _, col := range f.Children {
				child[col] = true
			}
			out[f.Column] = child

		case KindRelationCount:
			counts, _ := out[CountKey].(Projection)
			if counts == nil {
				counts = Projection{}
				out[CountKey] = counts
			}
			counts[f.CountOf] = true
		}
	}

	return out
}

// meaningful reports whether the request includes at least one declared,
// readable, non-identifier field. An empty or all-false request is the
// documented sentinel for "use the default field set".
func (s *Schema) meaningful(req Request) bool {
	for name, include := range req {
		if !include {
			continue
		}
		f, ok := s.index[name]
		if !ok || f.WriteOnly || f.Identifier {
			continue
		}
		return true
	}
	return false
}
