package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidComponent is returned (wrapped) when a token matches none of
// the request item grammars.
var ErrInvalidComponent = errors.New("Invalid request component")

// ComponentError reports a token that could not be classified.
type ComponentError struct {
	Token string
}

func (e *ComponentError) Error() string {
	return ErrInvalidComponent.Error()
}

func (e *ComponentError) Unwrap() error {
	return ErrInvalidComponent
}

// Hint returns a short suggestion for fixing the token, or "".
func (e *ComponentError) Hint() string {
	colon := strings.IndexByte(e.Token, ':')
	switch {
	case colon > 0 && strings.ContainsAny(e.Token[:colon], " \t"):
		return "header names may only contain letters, digits, '-' and '_'"
	case colon > 0 && colon == len(e.Token)-1:
		return "header values may not be empty"
	case strings.Count(e.Token, "[") != strings.Count(e.Token, "]"):
		return "unbalanced brackets in body path"
	case colon < 0 && !strings.Contains(e.Token, "="):
		return "use name==value for query, Name:value for headers, path=value or path:=json for body"
	}
	return ""
}

// CommandError represents a failure to assemble a command from arguments.
type CommandError struct {
	Position int
	Token    string
	Message  string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("argument %d: %s", e.Position, e.Message)
	}
	return fmt.Sprintf("argument %d (token: %q): %s", e.Position, e.Token, e.Message)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
