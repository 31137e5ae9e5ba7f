package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shift-inserts and order compaction update rows through intermediate
// duplicate orders inside one transaction. The ordering uniques must be
// declared deferrable and the shift transactions must defer them, or the
// first shifted row aborts the whole statement with a unique violation.
func TestOrderingConstraintsAreDeferrable(t *testing.T) {
	for _, name := range []string{levelOrderConstraint, lessonOrderConstraint} {
		idx := strings.Index(schema, "CONSTRAINT "+name+" UNIQUE")
		require.GreaterOrEqual(t, idx, 0, name)

		declaration := schema[idx:]
		declaration = declaration[:strings.Index(declaration, "\n")]
		assert.Contains(t, declaration, "DEFERRABLE INITIALLY IMMEDIATE", name)
	}

	assert.Equal(t, "SET CONSTRAINTS "+levelOrderConstraint+" DEFERRED", deferLevelOrderCheck)
	assert.Equal(t, "SET CONSTRAINTS "+lessonOrderConstraint+" DEFERRED", deferLessonOrderCheck)
}

// users.email mirrors the identity provider and is not an account key.
// Tokens may omit the email claim, so provisioning several subjects with an
// empty email must not collide on a unique constraint.
func TestUsersEmailIsNotUnique(t *testing.T) {
	for _, line := range strings.Split(schema, "\n") {
		if strings.Contains(line, "email") {
			assert.NotContains(t, line, "UNIQUE")
		}
	}
}
