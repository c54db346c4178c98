package watch

import (
	"fmt"

	"github.com/google/uuid"
)

// predicateKind discriminates the two supported filters.
type predicateKind int

const (
	kindOwner predicateKind = iota
	kindAssignee
)

// Predicate filters changes for one subscription. The two constructors
// cover the two views a user has of the shared list: todos they own and
// todos assigned to them.
type Predicate struct {
	kind   predicateKind
	userID uuid.UUID
}

// OwnedBy matches changes to todos whose owner is the given user.
func OwnedBy(userID uuid.UUID) Predicate {
	return Predicate{kind: kindOwner, userID: userID}
}

// AssignedTo matches changes to todos whose assignee set contains the
// given user.
func AssignedTo(userID uuid.UUID) Predicate {
	return Predicate{kind: kindAssignee, userID: userID}
}

// Matches reports whether the change is relevant to this predicate.
func (p Predicate) Matches(c *Change) bool {
	if c == nil {
		return false
	}
	switch p.kind {
	case kindOwner:
		return c.OwnerID == p.userID
	case kindAssignee:
		for _, id := range c.AssigneeIDs {
			if id == p.userID {
				return true
			}
		}
	}
	return false
}

// String renders the predicate for logging.
func (p Predicate) String() string {
	if p.kind == kindOwner {
		return fmt.Sprintf("owner==%s", p.userID)
	}
	return fmt.Sprintf("assignee==%s", p.userID)
}
