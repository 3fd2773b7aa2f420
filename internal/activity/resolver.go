// Package activity contributes the activity part of a contact search: the
// select columns, where predicates, filter descriptions and joins for every
// activity_* field.
//
// A Resolver is stateless apart from its read-only collaborators and may be
// shared across requests. All per-request state lives in the *search.Query
// passed to each call; effects that other contributors need to see are
// returned as Effects instead of being written to shared state.
package activity

import (
	"github.com/roach88/activityquery/internal/i18n"
	"github.com/roach88/activityquery/internal/log"
	"github.com/roach88/activityquery/internal/lookup"
)

// FieldPrefix marks the criteria this package owns.
const FieldPrefix = "activity_"

// Aliases registered by this package. Each one has a join in From.
const (
	TableActivity        = "civicrm_activity"
	TableActivityContact = "civicrm_activity_contact"
	TableActivityType    = "activity_type"
	TableActivityStatus  = "activity_status"
	TableActivityTag     = "civicrm_activity_tag"
	TableSourceContact   = "source_contact"
)

// Activity role codes accepted by the activity_role criterion.
const (
	RoleCodeSource   = "1"
	RoleCodeAssignee = "2"
	RoleCodeTarget   = "3"
)

// Effects carries what a where pass decided beyond the accumulator itself.
type Effects struct {
	// ConsiderComponentActivities is set when an activity type owned by a
	// component was searched for.
	ConsiderComponentActivities bool

	// ActivityRole is the last activity_role value seen, "" if none.
	ActivityRole string
}

func (e *Effects) merge(o Effects) {
	e.ConsiderComponentActivities = e.ConsiderComponentActivities || o.ConsiderComponentActivities
	if o.ActivityRole != "" {
		e.ActivityRole = o.ActivityRole
	}
}

// Resolver maps activity fields to SQL contributions.
type Resolver struct {
	lookups lookup.Provider
	tr      *i18n.Translator
	logger  log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTranslator sets the locale descriptions are rendered in.
func WithTranslator(tr *i18n.Translator) Option {
	return func(r *Resolver) {
		r.tr = tr
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l log.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a Resolver reading labels and role ids from lookups.
func New(lookups lookup.Provider, opts ...Option) *Resolver {
	r := &Resolver{
		lookups: lookups,
		logger:  log.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
