package ddl

import "strings"

// MapType normalizes a loosely-specified logical type into a Postgres SQL type.
//
//	"int"/"integer"             -> integer
//	"bigint"/"long"             -> bigint
//	"bool"/"boolean"            -> boolean
//	"date"                      -> date
//	"timestamp"                 -> timestamp(0) without time zone
//	"timestamptz"               -> timestamp(0) with time zone
//	"json"/"jsonb"              -> jsonb
//	"uuid"                      -> uuid
//	"string"/"text"/""          -> text
//	"serial"/"bigserial"        -> unchanged
//	everything else             -> passed through as raw SQL (varchar(32), numeric(10,2), ...)
func MapType(kind string) string {
	k := strings.TrimSpace(kind)
	switch strings.ToLower(k) {
	case "int", "integer":
		return "integer"
	case "bigint", "long":
		return "bigint"
	case "bool", "boolean":
		return "boolean"
	case "date":
		return "date"
	case "timestamp":
		return "timestamp(0) without time zone"
	case "timestamptz":
		return "timestamp(0) with time zone"
	case "json", "jsonb":
		return "jsonb"
	case "uuid":
		return "uuid"
	case "", "string", "text":
		return "text"
	case "serial":
		return "serial"
	case "bigserial":
		return "bigserial"
	default:
		return k
	}
}
