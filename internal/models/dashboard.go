package models

// DashboardStats aggregates record counts for the admin dashboard.
type DashboardStats struct {
	TotalStudents    int64 `json:"totalStudents"`
	TotalCourses     int64 `json:"totalCourses"`
	TotalLecturers   int64 `json:"totalLecturers"`
	TotalEnrollments int64 `json:"totalEnrollments"`
}
