package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from user-generated text.
type Sanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{rich: bluemonday.UGCPolicy(), plain: bluemonday.StrictPolicy()}
}

// Body keeps safe formatting markup.
func (s *Sanitizer) Body(in string) string {
	return strings.TrimSpace(s.rich.Sanitize(in))
}

// Line removes all markup.
func (s *Sanitizer) Line(in string) string {
	return strings.TrimSpace(s.plain.Sanitize(in))
}
