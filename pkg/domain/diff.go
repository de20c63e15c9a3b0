package domain

// VisibilityDiff represents the changes between two visible question lists.
// It is serialized to JSON for partial updates on the client.
type VisibilityDiff struct {
	SessionID string `json:"session_id"`

	// Shown lists questions that became visible, in the new display order.
	Shown []string `json:"shown,omitempty"`

	// Hidden lists questions that stopped being visible, in the old display order.
	Hidden []string `json:"hidden,omitempty"`

	// CurrentQuestionID is set when the question under the cursor changed.
	CurrentQuestionID *string `json:"current_question_id,omitempty"`

	// EndSurvey is set when the early termination signal flipped.
	EndSurvey *bool `json:"end_survey,omitempty"`
}

// Snapshot is the part of a session view that diffs are computed from.
type Snapshot struct {
	SessionID         string
	VisibleIDs        []string
	CurrentQuestionID string
	EndSurvey         bool
}

// DiffVisibility calculates the difference between old and new.
// If old is nil, the diff describes the whole new snapshot (initial load).
// It returns nil when nothing changed.
func DiffVisibility(old, new *Snapshot) *VisibilityDiff {
	if new == nil {
		return nil
	}

	diff := &VisibilityDiff{SessionID: new.SessionID}

	var oldIDs []string
	if old != nil {
		oldIDs = old.VisibleIDs
	}
	oldSet := toSet(oldIDs)
	newSet := toSet(new.VisibleIDs)

	for _, id := range new.VisibleIDs {
		if !oldSet[id] {
			diff.Shown = append(diff.Shown, id)
		}
	}
	for _, id := range oldIDs {
		if !newSet[id] {
			diff.Hidden = append(diff.Hidden, id)
		}
	}

	if old == nil || old.CurrentQuestionID != new.CurrentQuestionID {
		current := new.CurrentQuestionID
		diff.CurrentQuestionID = &current
	}
	if (old == nil && new.EndSurvey) || (old != nil && old.EndSurvey != new.EndSurvey) {
		end := new.EndSurvey
		diff.EndSurvey = &end
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *VisibilityDiff) IsEmpty() bool {
	return len(d.Shown) == 0 &&
		len(d.Hidden) == 0 &&
		d.CurrentQuestionID == nil &&
		d.EndSurvey == nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
