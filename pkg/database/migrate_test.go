package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbeddedInPairs(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Positive(t, ups)
	assert.Equal(t, ups, downs)
}

func TestInitialSchemaDeclaresEnrollmentUniqueness(t *testing.T) {
	raw, err := fs.ReadFile(migrationsFS, "migrations/000001_init_schema.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "enrollments_student_course_key UNIQUE (student_id, course_id)")
	assert.Contains(t, string(raw), "courses_course_code_key UNIQUE (course_code)")
	assert.Contains(t, string(raw), "grade TEXT,")
}
