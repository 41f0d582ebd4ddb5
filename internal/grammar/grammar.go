// Package grammar defines the structured grammar data for hreq commands.
package grammar

import (
	"fmt"
	"strings"
)

// Operator represents a request item separator.
type Operator struct {
	Symbol      string
	Kind        string
	Description string
	Example     string
}

// PathForm represents one way of addressing into the JSON body.
type PathForm struct {
	Form        string
	Description string
	Example     string
}

// Grammar contains the complete grammar definition.
type Grammar struct {
	Operators []Operator
	Paths     []PathForm
}

// GetGrammar returns the canonical grammar definition. Operators are listed
// in the order items are classified.
func GetGrammar() Grammar {
	return Grammar{
		Operators: []Operator{
			{Symbol: "==", Kind: "query", Description: "URL query parameter, appended in order; key and value non-empty", Example: "q==search"},
			{Symbol: "=", Kind: "body", Description: "JSON string at a body path", Example: "user[name]=Ada"},
			{Symbol: ":=", Kind: "body", Description: "raw JSON value at a body path", Example: "user[langs]:=[\"go\"]"},
			{Symbol: ":", Kind: "header", Description: "request header; name is letters, digits, '-' or '_', value non-empty", Example: "X-API-Key:secret"},
		},
		Paths: []PathForm{
			{Form: "key", Description: "object member at the root; all digits is an array index", Example: "name=Ada"},
			{Form: "[key]", Description: "object member", Example: "user[name]=Ada"},
			{Form: ".key", Description: "object member, even when numeric", Example: "user.name=Ada"},
			{Form: "[N]", Description: "array element, padded with nulls", Example: "tags[2]=c"},
			{Form: "[]", Description: "append to an array", Example: "tags[]=a"},
			{Form: "[...]", Description: "a leading bracket addresses the root itself", Example: "[]=first"},
		},
	}
}

// FormatHelp formats the grammar as help text.
func FormatHelp() string {
	g := GetGrammar()

	var help strings.Builder
	help.WriteString("Request items:\n")
	for _, op := range g.Operators {
		fmt.Fprintf(&help, "  %-4s %-7s - %s\n", op.Symbol, op.Kind, op.Description)
		if op.Example != "" {
			fmt.Fprintf(&help, "                 Example: %s\n", op.Example)
		}
	}

	help.WriteString("\nBody paths:\n")
	for _, p := range g.Paths {
		fmt.Fprintf(&help, "  %-12s - %s\n", p.Form, p.Description)
		if p.Example != "" {
			fmt.Fprintf(&help, "                 Example: %s\n", p.Example)
		}
	}

	help.WriteString("\nExamples:\n")
	help.WriteString("  hreq example.com/search q==golang page==2\n")
	help.WriteString("  \n")
	help.WriteString("  hreq POST api.example.com/users \\\n")
	help.WriteString("    Authorization:'Bearer $TOKEN' \\\n")
	help.WriteString("    user[name]=Ada user[langs][]=go admin:=true\n")
	help.WriteString("  \n")
	help.WriteString("  hreq :8080/items --pick '$.items[*].id'\n")

	return help.String()
}
