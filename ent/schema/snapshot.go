package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Snapshot captures one learner's full state at a point in time. Only
// the latest snapshot per learner is read back.
type Snapshot struct {
	ent.Schema
}

func (Snapshot) Fields() []ent.Field {
	return []ent.Field{
		field.String("learner_id").
			NotEmpty(),
		field.Int64("sequence").
			Unique().
			Comment("Global sequence number at the time of snapshot"),
		field.Time("timestamp").
			Default(time.Now).
			Comment("When the snapshot was taken"),
		field.Int("version").
			Default(1).
			Comment("Snapshot data format version"),
		field.JSON("data", map[string]any{}).
			Comment("Learner state as JSON"),
	}
}

func (Snapshot) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "sequence"),
		index.Fields("timestamp"),
	}
}
