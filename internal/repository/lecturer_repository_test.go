package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/models"
)

var lecturerRowColumns = []string{"id", "user_id", "first_name", "last_name", "email", "employee_number", "department", "specialization", "hire_date", "phone_number", "created_at", "updated_at", "username", "enabled"}

const lecturerSelect = "SELECT l.id, l.user_id, l.first_name, l.last_name, l.email, l.employee_number, l.department, l.specialization, l.hire_date, l.phone_number, l.created_at, l.updated_at, u.username, u.enabled FROM lecturers l JOIN users u ON u.id = l.user_id"

func TestLecturerRepositoryListActiveByDepartment(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLecturerRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(lecturerSelect+" WHERE u.enabled = $1 AND l.department = $2 ORDER BY l.last_name, l.first_name, l.id")).
		WithArgs(true, "Computer Engineering").
		WillReturnRows(sqlmock.NewRows(lecturerRowColumns).
			AddRow("l-1", "u-1", "John", "Doe", "john.doe@test.com", "EMP001", "Computer Engineering", "Software Engineering", now, nil, now, now, "john.doe@test.com", true))

	lecturers, err := repo.List(context.Background(), models.LecturerFilter{Department: "Computer Engineering", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, lecturers, 1)
	assert.Equal(t, "john.doe@test.com", lecturers[0].Username)
	assert.True(t, lecturers[0].Enabled)
	assert.Nil(t, lecturers[0].PhoneNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLecturerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(lecturerSelect + " ORDER BY l.last_name, l.first_name, l.id")).
		WillReturnRows(sqlmock.NewRows(lecturerRowColumns))

	lecturers, err := repo.List(context.Background(), models.LecturerFilter{})
	require.NoError(t, err)
	assert.Empty(t, lecturers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerRepositoryFindByIDIncludesDisabled(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLecturerRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(lecturerSelect+" WHERE l.id = $1")).
		WithArgs("l-1").
		WillReturnRows(sqlmock.NewRows(lecturerRowColumns).
			AddRow("l-1", "u-1", "John", "Doe", "john.doe@test.com", "EMP001", "CE", "SE", now, "555-0100", now, now, "john.doe@test.com", false))

	lecturer, err := repo.FindByID(context.Background(), "l-1")
	require.NoError(t, err)
	assert.False(t, lecturer.Enabled)
	require.NotNil(t, lecturer.PhoneNumber)
	assert.Equal(t, "555-0100", *lecturer.PhoneNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerRepositoryExistsByEmployeeNumber(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLecturerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM lecturers WHERE employee_number = $1 LIMIT 1")).
		WithArgs("EMP001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	found, err := repo.ExistsByEmployeeNumber(context.Background(), "EMP001", "")
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}
