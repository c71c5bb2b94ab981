package policy

import (
	"fmt"
	"strings"
)

// SameFirm reports whether actor and target profiles belong to the same
// firm. Internal profiles carry no firm and never match.
func SameFirm(actor, target Profile) bool {
	if actor.Firm == nil || target.Firm == nil {
		return false
	}
	return actor.Firm.ID == target.Firm.ID
}

// DelegatableChildFirm reports whether the actor's firm may delegate access
// into the candidate firm: the actor's firm must carry the parent type flag
// and the candidate must be one of its direct children. There are no
// transitive grandchildren in the hierarchy.
func DelegatableChildFirm(actorFirm, candidate Firm) bool {
	if !actorFirm.ParentType {
		return false
	}
	return candidate.ParentFirmID == actorFirm.ID
}

// withinFirmScope reports whether a firm-scoped actor may act on the target
// profile's firm.
func withinFirmScope(actor, target Profile) bool {
	if SameFirm(actor, target) {
		return true
	}
	if actor.Firm == nil || target.Firm == nil {
		return false
	}
	return DelegatableChildFirm(*actor.Firm, *target.Firm)
}

// FirmSelection is the outcome of the firm-selection step offered to a
// parent-firm actor. Parent is nil when the search query excludes it.
type FirmSelection struct {
	Parent   *Firm  `json:"parent,omitempty"`
	Children []Firm `json:"children"`
}

// SelectionRequired reports whether the firm-selection step must be offered
// at all. Child-firm actors and parents without children skip it entirely.
func SelectionRequired(actorFirm Firm, children []Firm) bool {
	return actorFirm.ParentType && len(children) > 0
}

// VisibleFirms filters the actor firm and its direct children against the
// search query. Matching is a case-insensitive substring test on the firm
// name; the parent row additionally matches on its code. A row either
// matches in full or is excluded.
func VisibleFirms(actorFirm Firm, children []Firm, query string) FirmSelection {
	query = strings.TrimSpace(strings.ToLower(query))
	sel := FirmSelection{Children: []Firm{}}
	if query == "" || matchesFirm(actorFirm.Name, query) || matchesFirm(actorFirm.Code, query) {
		parent := actorFirm
		sel.Parent = &parent
	}
	for _, child := range children {
		if child.ParentFirmID != actorFirm.ID {
			continue
		}
		if query == "" || matchesFirm(child.Name, query) {
			sel.Children = append(sel.Children, child)
		}
	}
	return sel
}

func matchesFirm(value, loweredQuery string) bool {
	return strings.Contains(strings.ToLower(value), loweredQuery)
}

// ValidateFirmParent enforces the depth-2 hierarchy invariant at
// construction time. A firm that is itself a child cannot become a parent,
// and a firm that already parents others cannot be made a child.
func ValidateFirmParent(child, parent Firm) error {
	if child.ID == parent.ID {
		return fmt.Errorf("%w: firm cannot parent itself", ErrInvalidState)
	}
	if parent.ParentFirmID != "" {
		return fmt.Errorf("%w: firm %s is already a child firm", ErrInvalidState, parent.ID)
	}
	if child.ParentType {
		return fmt.Errorf("%w: firm %s already parents other firms", ErrInvalidState, child.ID)
	}
	return nil
}

// ValidateOffices rejects offices that do not belong to the profile's
// owning firm. Cross-firm office assignment is an error, never silently
// dropped.
func ValidateOffices(firm *Firm, offices []Office) error {
	if len(offices) == 0 {
		return nil
	}
	if firm == nil {
		return fmt.Errorf("%w: offices require an owning firm", ErrInvalidState)
	}
	known := make(map[string]struct{}, len(firm.Offices))
	for _, o := range firm.Offices {
		known[o.ID] = struct{}{}
	}
	for _, o := range offices {
		if o.FirmID != firm.ID {
			return fmt.Errorf("%w: office %s belongs to firm %s, not %s", ErrInvalidState, o.ID, o.FirmID, firm.ID)
		}
		if _, ok := known[o.ID]; !ok {
			return fmt.Errorf("%w: office %s is not an office of firm %s", ErrInvalidState, o.ID, firm.ID)
		}
	}
	return nil
}

// FirmAssignable reports whether the firm may be attached to a profile. A
// firm must have at least one office first.
func FirmAssignable(f Firm) bool {
	return len(f.Offices) > 0
}
