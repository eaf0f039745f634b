// Package reconcile computes the create/update/close plan from the current
// annotation set and the existing tracker issue set.
package reconcile

import (
	"todosync/internal/annotation"
	"todosync/internal/tracker"
)

// Match pairs a current annotation with the existing issue carrying the
// same key.
type Match struct {
	Annotation annotation.Annotation
	Issue      tracker.Issue
}

// Plan is the output of reconciliation: three disjoint action sets whose
// key-union covers every annotation key and every non-empty issue key.
type Plan struct {
	// Creates holds annotations whose key has no existing issue.
	Creates []annotation.Annotation
	// Updates holds matched pairs. An update fires unconditionally for
	// every match; there is no content-equality check.
	Updates []Match
	// Closes holds issues whose key no longer appears in any annotation.
	Closes []tracker.Issue
}

// Empty reports whether the plan contains no actions.
func (p Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Closes) == 0
}

// Build performs the three-way set comparison over keys.
//
// Annotations are indexed by key with first-wins semantics: when two
// prefixes sit on the same line they share a positional key, and the
// leftmost occurrence drives the action. Issues with an empty key (no
// recognizable marker in the body) are foreign: they are never matched and
// never closed. Duplicate open issues for one key are not expected; if
// present, the first one listed wins and the rest are left untouched.
//
// Build is pure and idempotent: reconciling the same annotations against
// the tracker state produced by applying a previous plan yields no creates
// and no closes (updates recur by design).
func Build(annotations []annotation.Annotation, issues []tracker.Issue) Plan {
	byKey := make(map[string]annotation.Annotation, len(annotations))
	order := make([]string, 0, len(annotations))
	for _, ann := range annotations {
		if _, seen := byKey[ann.Key]; seen {
			continue
		}
		byKey[ann.Key] = ann
		order = append(order, ann.Key)
	}

	issueByKey := make(map[string]tracker.Issue, len(issues))
	for _, issue := range issues {
		if issue.Key == "" {
			continue
		}
		if _, seen := issueByKey[issue.Key]; seen {
			continue
		}
		issueByKey[issue.Key] = issue
	}

	var plan Plan
	for _, k := range order {
		ann := byKey[k]
		if issue, ok := issueByKey[k]; ok {
			plan.Updates = append(plan.Updates, Match{Annotation: ann, Issue: issue})
		} else {
			plan.Creates = append(plan.Creates, ann)
		}
	}
	for _, issue := range issues {
		if issue.Key == "" {
			continue
		}
		if issueByKey[issue.Key].ID != issue.ID {
			// Duplicate key; only the first listed issue is managed.
			continue
		}
		if _, ok := byKey[issue.Key]; !ok {
			plan.Closes = append(plan.Closes, issue)
		}
	}
	return plan
}
