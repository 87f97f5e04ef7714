package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AttemptEvent records one evaluated work item within a training session.
type AttemptEvent struct {
	ent.Schema
}

func (AttemptEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (AttemptEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("Links to SessionEvent"),
		field.String("learner_id").
			NotEmpty(),
		field.String("topic_id").
			NotEmpty().
			Comment("Topic the item was issued for"),
		field.String("item_id").
			Comment("Work item ID; empty when the factory failed"),
		field.Int("difficulty"),
		field.Bool("success").
			Comment("Tests passed and complexity matched"),
		field.Float("pass_rate").
			Comment("Fraction of tests passed, 0..1"),
		field.Bool("complexity_matched"),
		field.Int64("duration_ms").
			Default(0),
		field.String("strategy").
			Default("").
			Comment("Solution strategy chosen for the item"),
	}
}

func (AttemptEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("learner_id"),
		index.Fields("topic_id"),
	}
}
