package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Content limits, counted in characters.
const (
	MaxCaptionLength = 2200
	MaxCommentLength = 500
)

// ValidateCaption allows an empty caption.
func ValidateCaption(caption string) error {
	if utf8.RuneCountInString(caption) > MaxCaptionLength {
		return fmt.Errorf("caption must not exceed %d characters", MaxCaptionLength)
	}
	return nil
}

// NormalizeComment trims content and checks it is non-empty and within the
// length limit.
func NormalizeComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("comment content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return "", fmt.Errorf("comment must not exceed %d characters", MaxCommentLength)
	}
	return content, nil
}

// ValidateVideoContentType accepts video/* types, plus an empty type which
// callers resolve from the file extension.
func ValidateVideoContentType(contentType string) error {
	if contentType == "" || strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil
	}
	return errors.New("file must be a video")
}
