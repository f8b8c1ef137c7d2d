package errors

import (
	"strings"
	"unicode"
)

// maxInstructionLength bounds user prompts forwarded to the oracle.
const maxInstructionLength = 8000

// ValidateNodeID validates a node identifier supplied by a caller.
// Identifiers are opaque, but they travel through URLs and log lines, so
// control characters and path separators are rejected.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "node id cannot contain path separators")
	}

	return nil
}

// ValidateInstruction validates free text forwarded to the oracle as a dive
// or refine instruction.
func ValidateInstruction(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidInput, "instruction cannot be empty")
	}
	if len(text) > maxInstructionLength {
		return New(ErrCodeInvalidInput, "instruction too long (max %d characters)", maxInstructionLength)
	}
	return nil
}

// ValidateViewName validates the display name of a saved view.
func ValidateViewName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "view name cannot be empty")
	}

	if len(name) > 200 {
		return New(ErrCodeInvalidInput, "view name too long (max 200 characters)")
	}

	for _, r := range name {
		if r == '\x00' || (unicode.IsControl(r) && r != '\t') {
			return New(ErrCodeInvalidInput, "view name contains invalid characters")
		}
	}

	return nil
}

// ValidateFilename validates an uploaded document filename.
// It ensures the filename is a simple basename without path components.
func ValidateFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	if strings.Contains(filename, "..") || strings.ContainsRune(filename, '\x00') {
		return New(ErrCodeInvalidPath, "filename contains invalid characters")
	}

	return nil
}
