package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var codigoPattern = regexp.MustCompile(`^[A-Za-z0-9\-]{1,20}$`)

// ValidateCodigo validates an organizational or worker code (area, seccion,
// cargo, trabajador, permiso).
func ValidateCodigo(field, codigo string) error {
	if codigo == "" {
		return fmt.Errorf("%s is required", field)
	}
	if !codigoPattern.MatchString(codigo) {
		return fmt.Errorf("%s has invalid format: %s", field, codigo)
	}
	return nil
}

// ValidateDias validates a requested day count. Half days are allowed; the
// business calendar itself is owned by the HR backend.
func ValidateDias(dias float64) error {
	if dias <= 0 {
		return fmt.Errorf("dias_solicitados must be positive: %.2f", dias)
	}
	if dias > 365 {
		return fmt.Errorf("dias_solicitados exceeds maximum: %.2f", dias)
	}
	return nil
}

// SanitizeString removes control characters from free-text input.
func SanitizeString(s string) string {
	sanitized := regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
	return strings.TrimSpace(sanitized)
}
