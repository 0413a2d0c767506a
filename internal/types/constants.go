package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	AssignmentScheduled = "scheduled"
	AssignmentCompleted = "completed"
	AssignmentCanceled  = "canceled"
)

const (
	FieldTypeText  = "text"
	FieldTypeYesNo = "yesno"
)

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

func ValidAssignmentStatus(status string) bool {
	switch status {
	case AssignmentScheduled, AssignmentCompleted, AssignmentCanceled:
		return true
	}
	return false
}

func ValidFieldType(fieldType string) bool {
	return fieldType == FieldTypeText || fieldType == FieldTypeYesNo
}
