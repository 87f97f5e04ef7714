package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/mathlearn/ent/schema"
)

const (
	tableSnapshots   = "snapshots"
	tableAttempts    = "attempt_events"
	tableSessions    = "session_events"
	tableLLMRequests = "llm_request_events"
)

// declared is any ent schema type: its fields, indexes and mixins.
type declared interface {
	Fields() []ent.Field
	Indexes() []ent.Index
	Mixin() []ent.Mixin
}

var entities = []struct {
	table  string
	schema declared
}{
	{tableSnapshots, entschema.Snapshot{}},
	{tableAttempts, entschema.AttemptEvent{}},
	{tableSessions, entschema.SessionEvent{}},
	{tableLLMRequests, entschema.LLMRequestEvent{}},
}

// migrate creates or updates every table declared in ent/schema through
// ent's schema migrator.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	tables, err := schemaTables()
	if err != nil {
		return err
	}
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}

// schemaTables turns ent schema descriptors into migration tables. Every
// table gets an auto-increment integer "id" primary key, as ent would
// generate.
func schemaTables() ([]*schema.Table, error) {
	tables := make([]*schema.Table, 0, len(entities))
	for _, e := range entities {
		var (
			fields  []ent.Field
			indexes []ent.Index
		)
		for _, m := range e.schema.Mixin() {
			fields = append(fields, m.Fields()...)
			indexes = append(indexes, m.Indexes()...)
		}
		fields = append(fields, e.schema.Fields()...)
		indexes = append(indexes, e.schema.Indexes()...)

		t := schema.NewTable(e.table).
			AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt, Increment: true})

		for _, f := range fields {
			d := f.Descriptor()
			if d.Err != nil {
				return nil, fmt.Errorf("table %s field %s: %w", e.table, d.Name, d.Err)
			}
			col := &schema.Column{
				Name:     d.Name,
				Type:     d.Info.Type,
				Unique:   d.Unique,
				Nullable: d.Optional || d.Nillable,
			}
			if d.Size > 0 {
				col.Size = int64(d.Size)
			}
			t.AddColumn(col)
		}

		for _, idx := range indexes {
			d := idx.Descriptor()
			name := e.table + "_" + strings.Join(d.Fields, "_")
			t.AddIndex(name, d.Unique, d.Fields)
		}
		tables = append(tables, t)
	}
	return tables, nil
}
