package ddl

import "strings"

// quoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	quoteIdent(`pcv`)        => `"pcv"`
//	quoteIdent(`weird"name`) => `"weird""name"`
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// quoteFQN quotes a possibly schema-qualified name like "public.users" to
// `"public"."users"`. Empty segments are ignored.
func quoteFQN(f string) string {
	parts := strings.Split(f, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(p))
	}
	return strings.Join(out, ".")
}

// unquote strips every identifier quote from a wrapped name. The parent
// reference of "partition of" and the alter table target are emitted as a
// bare relation path ("public.events"), never as a quoted composite.
func unquote(wrapped string) string {
	return strings.ReplaceAll(wrapped, `"`, "")
}

// quoteIdents quotes each column name.
func quoteIdents(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quoteIdent(c)
	}
	return out
}

// literal renders a single-quoted string literal, doubling embedded quotes.
func literal(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
