package bunstore

import (
	"sort"
	"strings"

	"github.com/uptrace/bun"

	"github.com/marktide/go-catalog-engine/selection"
)

// ApplyProjection translates a selection.Projection into bun column and
// relation selection on q. Keys are visited in sorted order so the generated
// SQL is deterministic. A nil or empty projection selects all columns.
//
// Relation counts (the CountKey group) compile to correlated COUNT subqueries
// using the schema convention that a child table references its parent
// through <entity>_id; the result scans into the model's <relation>_count
// column.
func ApplyProjection(q *bun.SelectQuery, p selection.Projection, entity string) *bun.SelectQuery {
	if len(p) == 0 {
		return q
	}

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := p[key].(type) {
		case bool:
			if v {
				q = q.Column(key)
			}

		case selection.Projection:
			if key == selection.CountKey {
				q = applyCounts(q, v, entity)
				continue
			}
			q = q.Relation(relationName(key), relationColumns(v))
		}
	}

	return q
}

func applyCounts(q *bun.SelectQuery, counts selection.Projection, entity string) *bun.SelectQuery {
	rels := make([]string, 0, len(counts))
	for rel := range counts {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	for _, rel := range rels {
		q = q.ColumnExpr(
			"(SELECT count(*) FROM ? AS rel WHERE rel.? = ?TableAlias.id) AS ?",
			bun.Ident(rel), bun.Ident(entity+"_id"), bun.Ident(rel+"_count"),
		)
	}
	return q
}

func relationColumns(child selection.Projection) func(*bun.SelectQuery) *bun.SelectQuery {
	cols := make([]string, 0, len(child))
	for col, v := range child {
		if include, ok := v.(bool); ok && include {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)

	return func(sq *bun.SelectQuery) *bun.SelectQuery {
		return sq.Column(cols...)
	}
}

// relationName converts a storage relation key to the Go field name bun
// expects (ingredients -> Ingredients, order_items -> OrderItems).
func relationName(key string) string {
	parts := strings.Split(key, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
