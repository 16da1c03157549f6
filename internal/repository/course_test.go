package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The course_quests flag columns are nullable with a default of true; the
// select must apply that default so a NULL row still counts as a required,
// published quest instead of failing the bool scan.
func TestCourseQuestColumns_DefaultNullableFlags(t *testing.T) {
	assert.Contains(t, courseQuestColumns, "COALESCE(is_required, true) AS is_required")
	assert.Contains(t, courseQuestColumns, "COALESCE(is_published, true) AS is_published")
	assert.NotContains(t, courseQuestColumns, "is_required")
	assert.NotContains(t, courseQuestColumns, "is_published")
}
