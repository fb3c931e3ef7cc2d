// Package selection turns sparse, caller-controlled field-selection requests
// into concrete, storage-safe projections.
//
// # Overview
//
// Each entity declares a Schema: the logical fields a caller may request,
// how each translates to a storage name, and which fields are derived
// (relations, aggregate counts), identifier-like, or write-only.
//
//	req := selection.Request{"name": true, "ingredients": true}
//	proj := selection.Product.Project(req)
//	// proj == Projection{"id": true, "name": true,
//	//                    "ingredients": Projection{"id": true, "name": true, "amount": true}}
//
// An empty or all-false request is the documented sentinel for "use the
// default field set"; the substitution happens before derived fields resolve,
// and identifier fields are always forced into the output.
//
// # Validation split
//
// Project is a pure computation and never fails: it ignores names it does
// not know. Rejecting unknown names is the job of the request layer, modeled
// by ValidateRequest/ParseRequest, which report ErrFieldNotRecognized.
package selection
