package http

import (
	"fmt"
	"net/http"

	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleHealth handles GET /health. It answers 503 only when a required
// check fails; a failing report cache only degrades the service.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if status.Version == "" {
			status.Version = s.config.Version
		}
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, r, code, status, nil)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": s.config.Version,
	}, nil)
}

// handleGetStats handles GET /api/v1/stats
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"records": s.deps.Reader.Stats(r.Context()),
		"server": map[string]interface{}{
			"uptime": s.Uptime().String(),
		},
	}
	if s.deps.EventMetrics != nil {
		stats["events"] = s.deps.EventMetrics.Snapshot()
	}
	if s.deps.Scheduler != nil {
		stats["jobs"] = map[string]interface{}{
			"registered": s.deps.Scheduler.ListJobs(),
			"metrics":    s.deps.Scheduler.Metrics().Snapshot(),
		}
	}

	writeJSON(w, r, http.StatusOK, stats, nil)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListStudents handles GET /api/v1/students
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students := s.deps.Reader.ListStudents(r.Context())
	writeJSON(w, r, http.StatusOK, students, &ResponseMeta{TotalCount: countOf(len(students))})
}

// handleAddStudent handles POST /api/v1/students
func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req AddStudentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}

	result, err := s.deps.AddStudentHandler.Handle(r.Context(), command.AddStudentCommand{
		StudentID:     req.StudentID,
		Name:          req.Name,
		Email:         req.Email,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/students/"+result.StudentID)
	writeJSON(w, r, http.StatusCreated, query.StudentDTO{
		StudentID: result.StudentID,
		Name:      result.Name,
		Email:     result.Email,
	}, nil)
}

// handleGetStudent handles GET /api/v1/students/{id}
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Reader.GetStudent(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st, nil)
}

// handleRemoveStudent handles DELETE /api/v1/students/{id}
func (s *Server) handleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := s.deps.RemoveStudentHandler.Handle(r.Context(), command.RemoveStudentCommand{
		StudentID:     id,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if !result.Removed {
		writeJSONError(w, r, http.StatusNotFound, "not_found", fmt.Sprintf("Student with ID %s not found", id), nil)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"student_id":    result.StudentID,
		"grades_purged": result.GradesPurged,
	}, nil)
}

// handleGetStudentGrades handles GET /api/v1/students/{id}/grades
func (s *Server) handleGetStudentGrades(w http.ResponseWriter, r *http.Request) {
	s.listGrades(w, r, query.ListGradesQuery{StudentID: r.PathValue("id")})
}

// handleGetStudentGPA handles GET /api/v1/students/{id}/gpa
// ?fresh=true bypasses the report cache.
func (s *Server) handleGetStudentGPA(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetStudentGPAHandler.Handle(r.Context(), query.GetStudentGPAQuery{
		StudentID: r.PathValue("id"),
		SkipCache: getQueryParamBool(r, "fresh"),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result.Transcript, &ResponseMeta{FromCache: result.FromCache})
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListCourses handles GET /api/v1/courses
func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses := s.deps.Reader.ListCourses(r.Context())
	writeJSON(w, r, http.StatusOK, courses, &ResponseMeta{TotalCount: countOf(len(courses))})
}

// handleAddCourse handles POST /api/v1/courses
func (s *Server) handleAddCourse(w http.ResponseWriter, r *http.Request) {
	var req AddCourseRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}

	result, err := s.deps.AddCourseHandler.Handle(r.Context(), command.AddCourseCommand{
		CourseCode:    req.CourseCode,
		CourseName:    req.CourseName,
		Credits:       req.Credits,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/courses/"+result.CourseCode)
	writeJSON(w, r, http.StatusCreated, query.CourseDTO{
		CourseCode: result.CourseCode,
		CourseName: result.CourseName,
		Credits:    result.Credits,
	}, nil)
}

// handleGetCourse handles GET /api/v1/courses/{code}
func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Reader.GetCourse(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c, nil)
}

// handleRemoveCourse handles DELETE /api/v1/courses/{code}
func (s *Server) handleRemoveCourse(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	result, err := s.deps.RemoveCourseHandler.Handle(r.Context(), command.RemoveCourseCommand{
		CourseCode:    code,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if !result.Removed {
		writeJSONError(w, r, http.StatusNotFound, "not_found",
			fmt.Sprintf("Course with code %s not found", result.CourseCode), nil)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"course_code":   result.CourseCode,
		"grades_purged": result.GradesPurged,
	}, nil)
}

// handleGetCourseGrades handles GET /api/v1/courses/{code}/grades
func (s *Server) handleGetCourseGrades(w http.ResponseWriter, r *http.Request) {
	s.listGrades(w, r, query.ListGradesQuery{CourseCode: r.PathValue("code")})
}

// handleGetCourseAverage handles GET /api/v1/courses/{code}/average
// ?fresh=true bypasses the report cache.
func (s *Server) handleGetCourseAverage(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetCourseAverageHandler.Handle(r.Context(), query.GetCourseAverageQuery{
		CourseCode: r.PathValue("code"),
		SkipCache:  getQueryParamBool(r, "fresh"),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result.CourseSummary, &ResponseMeta{FromCache: result.FromCache})
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListGrades handles GET /api/v1/grades
// Optional filters: ?student_id=...&course_code=...
func (s *Server) handleListGrades(w http.ResponseWriter, r *http.Request) {
	s.listGrades(w, r, query.ListGradesQuery{
		StudentID:  r.URL.Query().Get("student_id"),
		CourseCode: r.URL.Query().Get("course_code"),
	})
}

// handleRecordGrade handles PUT /api/v1/grades
// Recording a grade for a pair that already has one replaces it.
func (s *Server) handleRecordGrade(w http.ResponseWriter, r *http.Request) {
	var req RecordGradeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}

	result, err := s.deps.RecordGradeHandler.Handle(r.Context(), command.RecordGradeCommand{
		StudentID:     req.StudentID,
		CourseCode:    req.CourseCode,
		Value:         *req.Value,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Replaced {
		status = http.StatusOK
	}
	writeJSON(w, r, status, gradeResponse{
		StudentID:     result.StudentID,
		CourseCode:    result.CourseCode,
		Value:         result.Value,
		Letter:        result.Letter,
		Points:        result.Points,
		Replaced:      result.Replaced,
		PreviousValue: result.PreviousValue,
	}, nil)
}

// gradeResponse is the body returned by PUT /api/v1/grades.
type gradeResponse struct {
	StudentID     string   `json:"student_id"`
	CourseCode    string   `json:"course_code"`
	Value         float64  `json:"value"`
	Letter        string   `json:"letter"`
	Points        float64  `json:"points"`
	Replaced      bool     `json:"replaced"`
	PreviousValue *float64 `json:"previous_value,omitempty"`
}

func (s *Server) listGrades(w http.ResponseWriter, r *http.Request, q query.ListGradesQuery) {
	grades, err := s.deps.Reader.ListGrades(r.Context(), q)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, grades, &ResponseMeta{TotalCount: countOf(len(grades))})
}

func countOf(n int) *int { return &n }
