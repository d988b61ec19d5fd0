package helpers

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps go-playground validator with SkillSwap rules
type CustomValidator struct {
	validate *validator.Validate
}

// NewCustomValidator creates a new custom validator with platform rules
func NewCustomValidator() *CustomValidator {
	v := validator.New()

	// Register custom validators
	v.RegisterValidation("skill_tag", validateSkillTag)
	v.RegisterValidation("notification_type", validateNotificationType)
	v.RegisterValidation("severity", validateSeverity)

	return &CustomValidator{validate: v}
}

// Validate validates a struct
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.Struct(i)
}

// validateSkillTag validates skill names: letters, digits, spaces, +, #, -, .
// (covers tags like "C++", "C#", ".NET", "UI-UX Design")
func validateSkillTag(fl validator.FieldLevel) bool {
	skillRegex := regexp.MustCompile(`^[a-zA-Z0-9+#.][a-zA-Z0-9+#. \-]{0,63}$`)
	return skillRegex.MatchString(fl.Field().String())
}

// validateNotificationType validates the closed set of notification types
func validateNotificationType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "welcome", "credit", "debit", "course":
		return true
	}
	return false
}

// validateSeverity validates detector severity labels
func validateSeverity(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "low", "medium", "high":
		return true
	}
	return false
}
