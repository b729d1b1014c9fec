package chatgate

import (
	"fmt"
	"strings"
)

// Validate checks that the request names a session and carries input.
func (r Request) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return invalidf("session_id is required")
	}
	if strings.TrimSpace(r.Question) == "" && r.Image == nil {
		return invalidf("question or image is required")
	}
	if r.Image != nil && len(r.Image.Data) == 0 {
		return invalidf("image is empty")
	}
	return nil
}

// ValidateTurn checks that a turn's parts are valid for its role.
func ValidateTurn(t Turn) error {
	switch t.Role {
	case RoleUser:
		return validateParts(t.Parts, t.Role, allowText|allowImage)
	case RoleModel:
		return validateParts(t.Parts, t.Role, allowText)
	default:
		return fmt.Errorf("unknown role %q: %w", t.Role, ErrInvalidInput)
	}
}

type partAllow uint8

const (
	allowText partAllow = 1 << iota
	allowImage
)

func validateParts(parts []Part, role Role, allowed partAllow) error {
	if len(parts) == 0 {
		return fmt.Errorf("%s turn has no parts: %w", role, ErrInvalidInput)
	}
	for _, p := range parts {
		switch v := p.(type) {
		case TextPart:
			if allowed&allowText == 0 {
				return fmt.Errorf("TextPart not allowed in %s turn: %w", role, ErrInvalidInput)
			}
		case ImagePart:
			if allowed&allowImage == 0 {
				return fmt.Errorf("ImagePart not allowed in %s turn: %w", role, ErrInvalidInput)
			}
			if (len(v.Data) == 0) == (v.URI == "") {
				return fmt.Errorf("ImagePart must carry exactly one of data or uri: %w", ErrInvalidInput)
			}
		default:
			return fmt.Errorf("unknown part type %T in %s turn: %w", p, role, ErrInvalidInput)
		}
	}
	return nil
}
