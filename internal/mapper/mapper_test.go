package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/models"
)

func strPtr(v string) *string { return &v }

func TestCourseToDTOWithLecturer(t *testing.T) {
	detail := models.CourseDetail{
		Course: models.Course{
			ID:          "c-1",
			CourseCode:  "CS101",
			CourseTitle: "Introduction to Computer Science",
			Credits:     3,
			Semester:    "Fall 2024",
			LecturerID:  strPtr("l-1"),
		},
		LecturerFirstName: strPtr("John"),
		LecturerLastName:  strPtr("Doe"),
	}

	out := CourseToDTO(detail)
	assert.Equal(t, "John Doe", out.LecturerName)
	require.NotNil(t, out.LecturerID)
	assert.Equal(t, "l-1", *out.LecturerID)
}

func TestCourseToDTOWithoutLecturer(t *testing.T) {
	out := CourseToDTO(models.CourseDetail{Course: models.Course{ID: "c-2", CourseCode: "ENG101", Credits: 3}})
	assert.Nil(t, out.LecturerID)
	assert.Empty(t, out.LecturerName)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "lecturerName")
}

func TestEnrollmentToDTODenormalisesNames(t *testing.T) {
	date := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	out := EnrollmentToDTO(models.EnrollmentDetail{
		Enrollment:       models.Enrollment{ID: "e-1", StudentID: "s-1", CourseID: "c-1", EnrollmentDate: date},
		StudentFirstName: "Ada",
		StudentLastName:  "Lovelace",
		AdmissionNumber:  "STU001",
		CourseTitle:      "Calculus I",
	})
	assert.Equal(t, "Ada Lovelace", out.StudentName)
	assert.Equal(t, "STU001", out.AdmissionNo)
	assert.Equal(t, "Calculus I", out.CourseTitle)
	assert.Equal(t, date, out.EnrollmentDate)
	assert.Nil(t, out.Grade)
}

func TestLecturerDTONeverCarriesPassword(t *testing.T) {
	out := LecturerToDTO(models.LecturerDetail{
		Lecturer: models.Lecturer{ID: "l-1", FirstName: "John", LastName: "Doe", HireDate: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)},
		Username: "john.doe@test.com",
		Enabled:  true,
	})
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.Equal(t, "2020-01-15", out.HireDate)
	assert.Equal(t, "John Doe", out.FullName)
}

func TestStudentFromRequestTrimsAndParses(t *testing.T) {
	s := StudentFromRequest(dto.StudentRequest{
		FirstName:       "  Ada ",
		LastName:        "Lovelace",
		Email:           "ada@uni.test",
		AdmissionNumber: " STU100 ",
		DateOfBirth:     "2001-12-10",
		Department:      "Mathematics",
	})
	assert.Equal(t, "Ada", s.FirstName)
	assert.Equal(t, "STU100", s.AdmissionNumber)
	assert.Equal(t, 2001, s.DateOfBirth.Year())
	assert.Equal(t, time.December, s.DateOfBirth.Month())
}

func TestCourseFromRequestDropsBlankOptionals(t *testing.T) {
	c := CourseFromRequest(dto.CourseRequest{CourseCode: "CS101", Description: strPtr("  "), LecturerID: strPtr("")})
	assert.Nil(t, c.Description)
	assert.Nil(t, c.LecturerID)
}
