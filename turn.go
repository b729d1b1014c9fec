package chatgate

import (
	"strings"
	"time"
)

// Turn is one role-tagged unit of conversation content. A Turn is treated
// as immutable once it has been appended to a Conversation.
type Turn struct {
	Role      Role
	Parts     []Part
	Timestamp time.Time
}

// NewUserTurn creates a user Turn from the given parts.
func NewUserTurn(parts ...Part) (Turn, error) {
	return newTurn(RoleUser, parts)
}

// NewModelTurn creates a model Turn from the given parts.
func NewModelTurn(parts ...Part) (Turn, error) {
	return newTurn(RoleModel, parts)
}

func newTurn(role Role, parts []Part) (Turn, error) {
	if len(parts) == 0 {
		return Turn{}, invalidf("%s turn has no parts", role)
	}
	for i, p := range parts {
		if p == nil {
			return Turn{}, invalidf("%s turn part %d is nil", role, i)
		}
	}
	return Turn{
		Role:      role,
		Parts:     append([]Part(nil), parts...),
		Timestamp: time.Now(),
	}, nil
}

// Text returns the concatenated text of all TextParts in the turn.
func (t Turn) Text() string {
	var sb strings.Builder
	for _, p := range t.Parts {
		if tp, ok := p.(TextPart); ok {
			sb.WriteString(tp.Text)
		}
	}
	return sb.String()
}

// Part is a sealed interface representing one piece of turn content.
// The unexported marker method prevents external implementations.
type Part interface {
	part()
}

// TextPart contains text content.
type TextPart struct {
	Text string
}

func (TextPart) part() {}

// ImagePart references an image in the canonical encoding. Exactly one of
// Data (inline bytes) or URI (backend-resolvable file reference) is set.
type ImagePart struct {
	Data     []byte
	URI      string
	MimeType string
}

func (ImagePart) part() {}

// Inline reports whether the image bytes are carried in the part itself.
func (p ImagePart) Inline() bool {
	return p.URI == ""
}

// Interface compliance checks.
var (
	_ Part = TextPart{}
	_ Part = ImagePart{}
)
