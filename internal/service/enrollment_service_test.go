package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/dto"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
)

func enrolledCampus(t *testing.T) (*campus, *dto.StudentResponse, *dto.CourseResponse) {
	t.Helper()
	c := newCampus(t)
	expectCommit(c.mock)
	student, err := c.students.Create(context.Background(), studentRequest("ADM-100", "jane@uni.test"))
	require.NoError(t, err)
	course, err := c.courses.Create(context.Background(), courseRequest("CS101", nil))
	require.NoError(t, err)
	return c, student, course
}

func TestEnrollmentServiceEnrollTwiceConflicts(t *testing.T) {
	c, student, course := enrolledCampus(t)
	ctx := context.Background()

	first, err := c.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", first.StudentName)
	assert.Equal(t, "CS101", first.CourseCode)
	assert.Nil(t, first.Grade)

	_, err = c.enrollments.Enroll(ctx, student.ID, course.ID)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Len(t, c.db.enrollments, 1)
}

func TestEnrollmentServiceEnrollMapsUniqueViolation(t *testing.T) {
	c, student, course := enrolledCampus(t)
	repo := raceEnrollments{memEnrollments{c.db}}
	svc := NewEnrollmentService(repo, memStudents{c.db}, memCourses{c.db}, memLecturers{c.db}, nil, nil)
	_, err := svc.Enroll(context.Background(), student.ID, course.ID)
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), student.ID, course.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "student already enrolled in course", appErrors.FromError(err).Message)
}

// raceEnrollments hides existing rows from the pre-check so the insert hits the constraint.
type raceEnrollments struct{ memEnrollments }

func (raceEnrollments) ExistsByStudentAndCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	return false, nil
}

func TestEnrollmentServiceEnrollUnknownRecords(t *testing.T) {
	c, student, course := enrolledCampus(t)
	_, err := c.enrollments.Enroll(context.Background(), "missing", course.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = c.enrollments.Enroll(context.Background(), student.ID, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestEnrollmentServiceDropCourseRequiresOwner(t *testing.T) {
	c, student, course := enrolledCampus(t)
	ctx := context.Background()
	expectCommit(c.mock)
	other, err := c.students.Create(ctx, studentRequest("ADM-200", "john@uni.test"))
	require.NoError(t, err)
	enrollment, err := c.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	expectRollback(c.mock)
	err = c.enrollments.DropCourse(ctx, other.ID, enrollment.ID)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidOperation))
	assert.Contains(t, c.db.enrollments, enrollment.ID)

	expectCommit(c.mock)
	require.NoError(t, c.enrollments.DropCourse(ctx, student.ID, enrollment.ID))
	assert.Empty(t, c.db.enrollments)
	require.NoError(t, c.mock.ExpectationsWereMet())
}

func TestEnrollmentServiceAssignGrade(t *testing.T) {
	c, student, course := enrolledCampus(t)
	ctx := context.Background()
	enrollment, err := c.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	graded, err := c.enrollments.ListGradedForStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, graded)

	expectCommit(c.mock)
	out, err := c.enrollments.AssignGrade(ctx, enrollment.ID, " A ")
	require.NoError(t, err)
	require.NotNil(t, out.Grade)
	assert.Equal(t, "A", *out.Grade)

	graded, err = c.enrollments.ListGradedForStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, graded, 1)
	assert.Equal(t, "A", *graded[0].Grade)

	expectRollback(c.mock)
	_, err = c.enrollments.AssignGrade(ctx, "missing", "B")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = c.enrollments.AssignGrade(ctx, enrollment.ID, "  ")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidOperation))
	assert.Equal(t, "grade must not be blank", appErrors.FromError(err).Message)

	expectCommit(c.mock)
	out, err = c.enrollments.AssignGrade(ctx, enrollment.ID, "Incomplete (medical leave)")
	require.NoError(t, err)
	assert.Equal(t, "Incomplete (medical leave)", *out.Grade)
	require.NoError(t, c.mock.ExpectationsWereMet())
}

func TestEnrollmentServiceLecturerViews(t *testing.T) {
	c, student, course := enrolledCampus(t)
	ctx := context.Background()
	expectCommit(c.mock)
	ada, err := c.lecturers.Create(ctx, lecturerRequest("ada@uni.test", "EMP-7", "Computing"))
	require.NoError(t, err)
	expectCommit(c.mock)
	outsider, err := c.lecturers.Create(ctx, lecturerRequest("alan@uni.test", "EMP-8", "Computing"))
	require.NoError(t, err)
	_, err = c.courses.AssignLecturer(ctx, course.ID, ada.ID)
	require.NoError(t, err)
	enrollment, err := c.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	roster, err := c.enrollments.ListForLecturerCourse(ctx, ada.ID, course.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 1)

	_, err = c.enrollments.ListForLecturerCourse(ctx, outsider.ID, course.ID)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = c.enrollments.AssignGradeAsLecturer(ctx, outsider.ID, enrollment.ID, "C")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Nil(t, c.db.enrollments[enrollment.ID].Grade)

	expectCommit(c.mock)
	out, err := c.enrollments.AssignGradeAsLecturer(ctx, ada.ID, enrollment.ID, "B+")
	require.NoError(t, err)
	assert.Equal(t, "B+", *out.Grade)
	require.NoError(t, c.mock.ExpectationsWereMet())
}

func TestEnrollmentServiceRemoveEnrollment(t *testing.T) {
	c, student, course := enrolledCampus(t)
	ctx := context.Background()
	enrollment, err := c.enrollments.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	require.NoError(t, c.enrollments.RemoveEnrollment(ctx, enrollment.ID))
	err = c.enrollments.RemoveEnrollment(ctx, enrollment.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestEnrollmentServiceMalformedIDsAreNotFound(t *testing.T) {
	c, student, _ := enrolledCampus(t)
	ctx := context.Background()

	err := c.enrollments.RemoveEnrollment(ctx, "42")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = c.enrollments.Enroll(ctx, student.ID, "y")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	expectRollback(c.mock)
	err = c.enrollments.DropCourse(ctx, student.ID, "42")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	require.NoError(t, c.mock.ExpectationsWereMet())
}
