package model

// IssueKind identifies why a validation failed.
type IssueKind string

const (
	IssueNoMatchingSession IssueKind = "NO_MATCHING_SESSION"
	IssueTeacherMismatch   IssueKind = "TEACHER_MISMATCH"
)

// ValidationIssue is one structured validation error.
type ValidationIssue struct {
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// ValidationResult is the outcome of checking an assignment slot against
// observed sessions. It is never persisted and never fatal to the caller;
// the calling workflow decides whether to block the write.
type ValidationResult struct {
	Success         bool              `json:"success"`
	Errors          []ValidationIssue `json:"errors"`
	Warnings        []string          `json:"warnings"`
	MatchedCount    int               `json:"matched_count"`
	ExpectedTeacher string            `json:"expected_teacher,omitempty"`
	Mandatory       bool              `json:"mandatory"`
}
