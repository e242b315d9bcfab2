// Package annotate aligns recipe annotations with instruction step text.
//
// The translator proposes appliance settings and ingredient references with
// character positions it cannot count reliably. This package recomputes every
// position from the text itself:
//
//   - [ScanSettings] : Finds appliance-setting notation spans via the notation grammar
//   - [FindMention] : Locates an ingredient mention through a cascading text search
//   - [ScoreMention] : Binds a free-form mention to the most plausible canonical ingredient
//   - [Reconcile] : Runs both resolvers per step, backfills uncovered ingredients, and produces the platform patch
//
// Reconciliation never fails: annotations that cannot be placed are dropped
// and tallied in a [Report]. Ingredient coverage is a quality metric for the
// caller to judge, not a correctness gate.
//
// All offsets and lengths count Unicode characters, matching how the recipe
// platform addresses step text.
package annotate
