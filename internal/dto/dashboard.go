package dto

// DashboardStatsResponse is the admin dashboard payload.
type DashboardStatsResponse struct {
	TotalStudents    int64 `json:"totalStudents"`
	TotalCourses     int64 `json:"totalCourses"`
	TotalLecturers   int64 `json:"totalLecturers"`
	TotalEnrollments int64 `json:"totalEnrollments"`
}
