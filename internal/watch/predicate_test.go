package watch

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPredicate_Matches(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	assignee := uuid.New()
	bystander := uuid.New()

	change := &Change{
		Op:          "UPDATE",
		TodoID:      uuid.New(),
		OwnerID:     owner,
		AssigneeIDs: []uuid.UUID{assignee},
	}

	tests := []struct {
		name      string
		predicate Predicate
		change    *Change
		want      bool
	}{
		{
			name:      "owner predicate matches the owner",
			predicate: OwnedBy(owner),
			change:    change,
			want:      true,
		},
		{
			name:      "owner predicate rejects a non-owner",
			predicate: OwnedBy(bystander),
			change:    change,
			want:      false,
		},
		{
			name:      "owner predicate does not match via assignment",
			predicate: OwnedBy(assignee),
			change:    change,
			want:      false,
		},
		{
			name:      "assignee predicate matches an assigned user",
			predicate: AssignedTo(assignee),
			change:    change,
			want:      true,
		},
		{
			name:      "assignee predicate rejects an unassigned user",
			predicate: AssignedTo(bystander),
			change:    change,
			want:      false,
		},
		{
			name:      "assignee predicate does not match via ownership",
			predicate: AssignedTo(owner),
			change:    change,
			want:      false,
		},
		{
			name:      "empty assignee set matches nobody",
			predicate: AssignedTo(assignee),
			change:    &Change{OwnerID: owner},
			want:      false,
		},
		{
			name:      "nil change matches nothing",
			predicate: OwnedBy(owner),
			change:    nil,
			want:      false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.predicate.Matches(tc.change))
		})
	}
}

func TestPredicate_String(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	assert.Equal(t, "owner=="+uid.String(), OwnedBy(uid).String())
	assert.Equal(t, "assignee=="+uid.String(), AssignedTo(uid).String())
}
