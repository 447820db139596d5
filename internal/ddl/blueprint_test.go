package ddl

import (
	"errors"
	"reflect"
	"testing"

	"pgpartition/internal/partition"
)

func TestBlueprint_Accessors(t *testing.T) {
	t.Parallel()

	bp := NewBlueprint("public.events", "app_")
	if bp.Table() != "public.events" || bp.Prefix() != "app_" {
		t.Fatalf("Table/Prefix = %q/%q", bp.Table(), bp.Prefix())
	}
	if bp.Command() != nil {
		t.Fatalf("new blueprint has a command")
	}

	bp.BigIncrements("id").StartingValue(1000)
	bp.Text("note").Nullable().Default("'n/a'")
	bp.String("code", 12)
	bp.String("free", 0)
	bp.Decimal("amount", 10, 2)
	bp.Primary("id")

	cols := bp.Columns()
	want := []ColumnDef{
		{Name: "id", SQLType: "bigserial", AutoIncrement: true, StartingValue: 1000},
		{Name: "note", SQLType: "text", Nullable: true, Default: "'n/a'"},
		{Name: "code", SQLType: "varchar(12)"},
		{Name: "free", SQLType: "varchar"},
		{Name: "amount", SQLType: "decimal(10, 2)"},
	}
	if !reflect.DeepEqual(cols, want) {
		t.Fatalf("Columns() =\n%#v\nwant\n%#v", cols, want)
	}

	// Returned slices are copies.
	cols[0].Name = "mutated"
	pk := bp.PrimaryKey()
	pk[0] = "mutated"
	if bp.Columns()[0].Name != "id" || bp.PrimaryKey()[0] != "id" {
		t.Fatalf("accessors leak internal state")
	}
}

func TestBlueprint_SetCommandOnce(t *testing.T) {
	t.Parallel()

	bp := NewBlueprint("events", "")
	if err := bp.SetCommand(partition.Detach("events_2023")); err != nil {
		t.Fatalf("first SetCommand: %v", err)
	}
	if err := bp.SetCommand(partition.Detach("events_2024")); !errors.Is(err, ErrCommandSet) {
		t.Fatalf("second SetCommand error = %v, want ErrCommandSet", err)
	}
	if got := bp.Command().(partition.DetachPartition).Table; got != "events_2023" {
		t.Fatalf("command replaced: %q", got)
	}
}

func TestBlueprint_IndexNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		table, prefix string
		cols          []string
		want          string
	}{
		{"events", "", []string{"created_at"}, "events_created_at_index"},
		{"events", "app_", []string{"user_id", "created_at"}, "app_events_user_id_created_at_index"},
		{"public.Events", "", []string{"Day"}, "public_events_day_index"},
		{"my-table", "", []string{"a"}, "my_table_a_index"},
	}
	for _, tt := range tests {
		bp := NewBlueprint(tt.table, tt.prefix)
		idx := bp.Index(tt.cols...)
		if idx.Name != tt.want {
			t.Fatalf("Index(%v) on %s = %q, want %q", tt.cols, tt.table, idx.Name, tt.want)
		}
		if got := bp.Indexes(); len(got) != 1 || !reflect.DeepEqual(got[0].Columns, tt.cols) {
			t.Fatalf("Indexes() = %#v", got)
		}
	}
}

func TestColumnBuilder_Def(t *testing.T) {
	t.Parallel()

	bp := NewBlueprint("t", "")
	c := bp.Integer("n").AutoIncrement().StartingValue(5)
	if d := c.Def(); !d.AutoIncrement || d.StartingValue != 5 || d.SQLType != "integer" {
		t.Fatalf("Def() = %#v", d)
	}
	c.StartingValue(7)
	if bp.Columns()[0].StartingValue != 7 {
		t.Fatalf("builder does not write through to the blueprint")
	}
}
