package reconcile

import "strings"

// Match partitions source records against a snapshot of local records.
//
// It returns one decision per source record after deduplication, in source
// order. Records without a natural key become skip decisions carrying a
// *ValidationError. Only the schema's watched fields are compared.
func Match(schema Schema, source []SourceRecord, local []LocalRecord) *Plan {
	plan := &Plan{
		Kind:      schema.Kind,
		Fetched:   len(source),
		Decisions: make([]MatchDecision, 0, len(source)),
	}

	index := buildLocalIndex(local)
	seen := make(map[string]struct{}, len(source))

	for _, rec := range source {
		key := strings.TrimSpace(rec.Key)
		if key == "" {
			plan.Decisions = append(plan.Decisions, MatchDecision{
				Action: ActionSkip,
				Record: rec,
				Err:    &ValidationError{Kind: schema.Kind, Key: rec.Key, Reason: ErrMissingKey},
			})
			continue
		}

		// First occurrence wins
		if _, dup := seen[key]; dup {
			plan.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		rec.Key = key

		existing, ok := index[key]
		if !ok {
			plan.Decisions = append(plan.Decisions, MatchDecision{Action: ActionInsert, Record: rec})
			continue
		}

		changed := diffWatched(schema.Watched, existing.Fields, rec.Fields)
		if len(changed) == 0 {
			plan.Decisions = append(plan.Decisions, MatchDecision{
				Action:  ActionUnchanged,
				Record:  rec,
				LocalID: existing.ID,
			})
			continue
		}

		plan.Decisions = append(plan.Decisions, MatchDecision{
			Action:  ActionUpdate,
			Record:  rec,
			LocalID: existing.ID,
			Changed: changed,
		})
	}

	return plan
}

// buildLocalIndex maps natural keys to local records. Duplicate local keys are
// a store consistency problem; the first one indexed wins.
func buildLocalIndex(local []LocalRecord) map[string]LocalRecord {
	index := make(map[string]LocalRecord, len(local))
	for _, rec := range local {
		key := strings.TrimSpace(rec.Key)
		if key == "" {
			continue
		}
		if _, exists := index[key]; exists {
			continue
		}
		index[key] = rec
	}
	return index
}

// diffWatched returns the watched fields whose source value differs from the
// local one, with the source value.
func diffWatched(watched []Field, local, source Fields) Fields {
	var changed Fields
	for _, f := range watched {
		want := source.Get(f)
		if local.Get(f) == want {
			continue
		}
		if changed == nil {
			changed = make(Fields)
		}
		changed[f] = want
	}
	return changed
}
