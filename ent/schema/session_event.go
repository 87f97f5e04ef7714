package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records training session lifecycle events (start/end).
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("UUID grouping events in a session"),
		field.String("learner_id").
			NotEmpty(),
		field.String("action").
			NotEmpty().
			Comment("start or end"),
		field.String("target_level").
			Comment("Proficiency level the session trains towards"),
		field.String("final_level").
			Default("").
			Comment("Level at termination (on end only)"),
		field.String("reason").
			Default("").
			Comment("TargetReached, Exhausted, SafetyLimit, or an abort cause (on end only)"),
		field.Int("topics_trained").
			Default(0),
		field.Int("items_attempted").
			Default(0),
		field.Int("successes").
			Default(0),
		field.Int("duration_secs").
			Default(0),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("learner_id"),
		index.Fields("action"),
	}
}
