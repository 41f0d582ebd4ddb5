package parser

import (
	"strings"

	"github.com/adammpkins/hreq/internal/types"
)

// ParseCommand parses the positional arguments of an invocation:
//
//	[METHOD] URL [ITEM ...]
//
// Every item is classified with ParseComponent; the first failure aborts.
func ParseCommand(args []string) (*types.Command, error) {
	if len(args) == 0 {
		return nil, &CommandError{Position: 0, Message: "expected URL"}
	}

	cmd := &types.Command{}
	pos := 0
	if len(args) > 1 && isMethod(args[0]) {
		cmd.Method = strings.ToUpper(args[0])
		pos++
	}

	if strings.TrimSpace(args[pos]) == "" {
		return nil, &CommandError{Position: pos, Token: args[pos], Message: "expected URL"}
	}
	cmd.URL = args[pos]
	pos++

	for ; pos < len(args); pos++ {
		c, err := ParseComponent(args[pos])
		if err != nil {
			return nil, &CommandError{Position: pos, Token: args[pos], Message: err.Error(), Err: err}
		}
		cmd.Components = append(cmd.Components, c)
	}

	return cmd, nil
}

// isMethod reports whether s names an HTTP method. Standard methods match
// case-insensitively; any other all-uppercase word is taken as an extension
// method.
func isMethod(s string) bool {
	if isValidHTTPMethod(s) {
		return true
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// isValidHTTPMethod checks if a method is a standard HTTP method.
func isValidHTTPMethod(method string) bool {
	validMethods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "TRACE", "CONNECT"}
	methodUpper := strings.ToUpper(method)
	for _, valid := range validMethods {
		if methodUpper == valid {
			return true
		}
	}
	return false
}
