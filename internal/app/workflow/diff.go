// internal/app/workflow/diff.go
package workflow

import (
	"strings"

	"github.com/umunna-dev/umunna/internal/domain/models"
)

// normalizeValue collapses a field value for comparison: absent and
// blank values become the empty string, everything else is trimmed.
// Only the comparison uses the normalized form; the stored diff keeps
// the original values.
func normalizeValue(s string) string {
	return strings.TrimSpace(s)
}

// ComputeDiff returns the fields in proposed whose normalized value
// differs from the current one. Fields absent from current compare as
// empty. The returned map holds the original, non-normalized values.
func ComputeDiff(current, proposed map[string]string) map[string]models.FieldChange {
	changes := make(map[string]models.FieldChange)
	for field, newValue := range proposed {
		oldValue := current[field]
		if normalizeValue(oldValue) == normalizeValue(newValue) {
			continue
		}
		changes[field] = models.FieldChange{Old: oldValue, New: newValue}
	}
	return changes
}

// fieldsOverlap reports whether two diffs share at least one field.
func fieldsOverlap(a, b map[string]models.FieldChange) bool {
	for field := range a {
		if _, ok := b[field]; ok {
			return true
		}
	}
	return false
}
