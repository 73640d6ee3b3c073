package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/models"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func expectCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

func uniqueViolation(constraint string) error {
	return &pq.Error{Code: "23505", Constraint: constraint}
}

// memDB backs the repository fakes so services wired together observe each
// other's writes the way they would through PostgreSQL.
type memDB struct {
	seq         int
	users       map[string]models.User
	students    map[string]models.Student
	lecturers   map[string]models.Lecturer
	courses     map[string]models.Course
	enrollments map[string]models.Enrollment
	audits      []models.AuditLog
	failWith    error
}

func newMemDB() *memDB {
	return &memDB{
		users:       map[string]models.User{},
		students:    map[string]models.Student{},
		lecturers:   map[string]models.Lecturer{},
		courses:     map[string]models.Course{},
		enrollments: map[string]models.Enrollment{},
	}
}

// missingRow mirrors Postgres on a uuid column: a malformed id fails with
// invalid_text_representation instead of matching nothing.
func missingRow(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &pq.Error{Code: "22P02", Message: fmt.Sprintf("invalid input syntax for type uuid: %q", id)}
	}
	return sql.ErrNoRows
}

// nextID returns UUIDs so ids pass the uuid validation on request DTOs.
func (m *memDB) nextID(prefix string) string {
	m.seq++
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s-%d", prefix, m.seq))).String()
}

func sortedKeys[T any](items map[string]T) []string {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// users

type memUsers struct{ db *memDB }

func (r memUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if r.db.failWith != nil {
		return nil, r.db.failWith
	}
	for _, u := range r.db.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memUsers) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	for id, u := range r.db.users {
		if u.Username == username && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memUsers) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.db.users {
		if u.Username == user.Username {
			return uniqueViolation("users_username_key")
		}
	}
	user.ID = r.db.nextID("user")
	user.CreatedAt = time.Now()
	r.db.users[user.ID] = *user
	return nil
}

func (r memUsers) CreateTx(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
	return r.Create(ctx, user)
}

func (r memUsers) UpdateUsernameTx(ctx context.Context, tx *sqlx.Tx, id, username string) error {
	u, ok := r.db.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Username = username
	r.db.users[id] = u
	return nil
}

func (r memUsers) SetEnabled(ctx context.Context, id string, enabled bool) error {
	u, ok := r.db.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Enabled = enabled
	r.db.users[id] = u
	return nil
}

func (r memUsers) SetEnabledTx(ctx context.Context, tx *sqlx.Tx, id string, enabled bool) error {
	return r.SetEnabled(ctx, id, enabled)
}

func (r memUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	u, ok := r.db.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	r.db.users[id] = u
	return nil
}

func (r memUsers) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.db.audits = append(r.db.audits, *log)
	return nil
}

// students

type memStudents struct{ db *memDB }

func (r memStudents) List(ctx context.Context) ([]models.Student, error) {
	if r.db.failWith != nil {
		return nil, r.db.failWith
	}
	out := make([]models.Student, 0, len(r.db.students))
	for _, id := range sortedKeys(r.db.students) {
		out = append(out, r.db.students[id])
	}
	return out, nil
}

func (r memStudents) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := r.db.students[id]; ok {
		return &s, nil
	}
	return nil, missingRow(id)
}

func (r memStudents) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	for _, s := range r.db.students {
		if s.UserID == userID {
			student := s
			return &student, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memStudents) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := r.db.students[id]
	return ok, nil
}

func (r memStudents) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for id, s := range r.db.students {
		if s.Email == email && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memStudents) ExistsByAdmissionNumber(ctx context.Context, admissionNumber, excludeID string) (bool, error) {
	for id, s := range r.db.students {
		if s.AdmissionNumber == admissionNumber && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memStudents) SaveTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	if student.ID == "" {
		student.ID = r.db.nextID("student")
	} else if _, ok := r.db.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	r.db.students[student.ID] = *student
	return nil
}

func (r memStudents) DeleteByIDTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, ok := r.db.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.db.students, id)
	return nil
}

func (r memStudents) Count(ctx context.Context) (int64, error) {
	if r.db.failWith != nil {
		return 0, r.db.failWith
	}
	return int64(len(r.db.students)), nil
}

// lecturers

type memLecturers struct{ db *memDB }

func (r memLecturers) detail(l models.Lecturer) models.LecturerDetail {
	u := r.db.users[l.UserID]
	return models.LecturerDetail{Lecturer: l, Username: u.Username, Enabled: u.Enabled}
}

func (r memLecturers) List(ctx context.Context, filter models.LecturerFilter) ([]models.LecturerDetail, error) {
	out := []models.LecturerDetail{}
	for _, id := range sortedKeys(r.db.lecturers) {
		d := r.detail(r.db.lecturers[id])
		if filter.ActiveOnly && !d.Enabled {
			continue
		}
		if filter.Department != "" && d.Department != filter.Department {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r memLecturers) FindByID(ctx context.Context, id string) (*models.LecturerDetail, error) {
	if l, ok := r.db.lecturers[id]; ok {
		d := r.detail(l)
		return &d, nil
	}
	return nil, missingRow(id)
}

func (r memLecturers) FindByUserID(ctx context.Context, userID string) (*models.LecturerDetail, error) {
	for _, l := range r.db.lecturers {
		if l.UserID == userID {
			d := r.detail(l)
			return &d, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r memLecturers) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := r.db.lecturers[id]
	return ok, nil
}

func (r memLecturers) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for id, l := range r.db.lecturers {
		if l.Email == email && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memLecturers) ExistsByEmployeeNumber(ctx context.Context, employeeNumber, excludeID string) (bool, error) {
	for id, l := range r.db.lecturers {
		if l.EmployeeNumber == employeeNumber && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memLecturers) SaveTx(ctx context.Context, tx *sqlx.Tx, lecturer *models.Lecturer) error {
	if lecturer.ID == "" {
		lecturer.ID = r.db.nextID("lecturer")
	} else if _, ok := r.db.lecturers[lecturer.ID]; !ok {
		return sql.ErrNoRows
	}
	r.db.lecturers[lecturer.ID] = *lecturer
	return nil
}

func (r memLecturers) Count(ctx context.Context) (int64, error) {
	if r.db.failWith != nil {
		return 0, r.db.failWith
	}
	return int64(len(r.db.lecturers)), nil
}

// courses

type memCourses struct{ db *memDB }

func (r memCourses) detail(c models.Course) models.CourseDetail {
	d := models.CourseDetail{Course: c}
	if c.LecturerID != nil {
		if l, ok := r.db.lecturers[*c.LecturerID]; ok {
			first, last := l.FirstName, l.LastName
			d.LecturerFirstName, d.LecturerLastName = &first, &last
		}
	}
	return d
}

func (r memCourses) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, error) {
	out := []models.CourseDetail{}
	for _, id := range sortedKeys(r.db.courses) {
		c := r.db.courses[id]
		if filter.LecturerID != "" && (c.LecturerID == nil || *c.LecturerID != filter.LecturerID) {
			continue
		}
		out = append(out, r.detail(c))
	}
	return out, nil
}

func (r memCourses) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	if c, ok := r.db.courses[id]; ok {
		d := r.detail(c)
		return &d, nil
	}
	return nil, missingRow(id)
}

func (r memCourses) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := r.db.courses[id]
	return ok, nil
}

func (r memCourses) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	for id, c := range r.db.courses {
		if c.CourseCode == code && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r memCourses) IsTaughtBy(ctx context.Context, courseID, lecturerID string) (bool, error) {
	c, ok := r.db.courses[courseID]
	return ok && c.LecturerID != nil && *c.LecturerID == lecturerID, nil
}

func (r memCourses) Save(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = r.db.nextID("course")
	} else if _, ok := r.db.courses[course.ID]; !ok {
		return sql.ErrNoRows
	}
	r.db.courses[course.ID] = *course
	return nil
}

func (r memCourses) AssignLecturer(ctx context.Context, courseID, lecturerID string) error {
	c, ok := r.db.courses[courseID]
	if !ok {
		return sql.ErrNoRows
	}
	c.LecturerID = &lecturerID
	r.db.courses[courseID] = c
	return nil
}

func (r memCourses) DeleteByIDTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	if _, ok := r.db.courses[id]; !ok {
		return missingRow(id)
	}
	delete(r.db.courses, id)
	return nil
}

func (r memCourses) Count(ctx context.Context) (int64, error) {
	if r.db.failWith != nil {
		return 0, r.db.failWith
	}
	return int64(len(r.db.courses)), nil
}

// enrollments

type memEnrollments struct{ db *memDB }

func (r memEnrollments) detail(e models.Enrollment) models.EnrollmentDetail {
	s := r.db.students[e.StudentID]
	c := r.db.courses[e.CourseID]
	return models.EnrollmentDetail{
		Enrollment:       e,
		StudentFirstName: s.FirstName,
		StudentLastName:  s.LastName,
		AdmissionNumber:  s.AdmissionNumber,
		CourseCode:       c.CourseCode,
		CourseTitle:      c.CourseTitle,
		Credits:          c.Credits,
		Semester:         c.Semester,
	}
}

func (r memEnrollments) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	out := []models.EnrollmentDetail{}
	for _, id := range sortedKeys(r.db.enrollments) {
		e := r.db.enrollments[id]
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && e.CourseID != filter.CourseID {
			continue
		}
		if filter.GradedOnly && e.Grade == nil {
			continue
		}
		out = append(out, r.detail(e))
	}
	return out, nil
}

func (r memEnrollments) FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	if e, ok := r.db.enrollments[id]; ok {
		d := r.detail(e)
		return &d, nil
	}
	return nil, missingRow(id)
}

func (r memEnrollments) FindByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Enrollment, error) {
	if e, ok := r.db.enrollments[id]; ok {
		return &e, nil
	}
	return nil, missingRow(id)
}

func (r memEnrollments) ExistsByStudentAndCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	for _, e := range r.db.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r memEnrollments) Create(ctx context.Context, enrollment *models.Enrollment) error {
	for _, e := range r.db.enrollments {
		if e.StudentID == enrollment.StudentID && e.CourseID == enrollment.CourseID {
			return uniqueViolation("enrollments_student_course_key")
		}
	}
	enrollment.ID = r.db.nextID("enrollment")
	r.db.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (r memEnrollments) UpdateGradeTx(ctx context.Context, tx *sqlx.Tx, id, grade string) error {
	e, ok := r.db.enrollments[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Grade = &grade
	r.db.enrollments[id] = e
	return nil
}

func (r memEnrollments) DeleteByID(ctx context.Context, id string) error {
	if _, ok := r.db.enrollments[id]; !ok {
		return missingRow(id)
	}
	delete(r.db.enrollments, id)
	return nil
}

func (r memEnrollments) DeleteByIDTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	return r.DeleteByID(ctx, id)
}

func (r memEnrollments) deleteWhere(match func(models.Enrollment) bool) int64 {
	var n int64
	for id, e := range r.db.enrollments {
		if match(e) {
			delete(r.db.enrollments, id)
			n++
		}
	}
	return n
}

func (r memEnrollments) DeleteByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) (int64, error) {
	return r.deleteWhere(func(e models.Enrollment) bool { return e.StudentID == studentID }), nil
}

func (r memEnrollments) DeleteByCourseTx(ctx context.Context, tx *sqlx.Tx, courseID string) (int64, error) {
	return r.deleteWhere(func(e models.Enrollment) bool { return e.CourseID == courseID }), nil
}

func (r memEnrollments) Count(ctx context.Context) (int64, error) {
	if r.db.failWith != nil {
		return 0, r.db.failWith
	}
	return int64(len(r.db.enrollments)), nil
}

// campus wires every service against one memDB.
type campus struct {
	db          *memDB
	mock        sqlmock.Sqlmock
	students    *StudentService
	lecturers   *LecturerService
	courses     *CourseService
	enrollments *EnrollmentService
}

func newCampus(t *testing.T) *campus {
	t.Helper()
	db := newMemDB()
	tx, mock := newTxProviderMock(t)
	users := memUsers{db}
	enrollmentRepo := memEnrollments{db}
	c := &campus{db: db, mock: mock}
	c.students = NewStudentService(memStudents{db}, users, enrollmentRepo, tx, nil, nil)
	c.lecturers = NewLecturerService(memLecturers{db}, users, tx, nil, nil)
	c.courses = NewCourseService(memCourses{db}, memLecturers{db}, enrollmentRepo, tx, nil, nil)
	c.enrollments = NewEnrollmentService(enrollmentRepo, memStudents{db}, memCourses{db}, memLecturers{db}, tx, nil)
	return c
}
