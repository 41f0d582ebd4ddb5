package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// JSON syntax highlighting styles
	jsonKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	jsonStringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	jsonNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	jsonBoolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213"))

	jsonNullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	jsonPunctStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	headerNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	statusOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)
)

func statusStyle(code int) lipgloss.Style {
	switch {
	case code >= 400:
		return statusErrorStyle
	case code >= 300:
		return statusWarnStyle
	}
	return statusOKStyle
}

// highlightJSONLine applies syntax highlighting to a single line of
// indented JSON.
func highlightJSONLine(line string) string {
	var result strings.Builder
	i := 0

	for i < len(line) {
		char := line[i]

		if char == ' ' || char == '\t' {
			result.WriteByte(char)
			i++
			continue
		}

		// String literals; a string followed by ':' is a key.
		if char == '"' {
			end := i + 1
			escaped := false
			for end < len(line) {
				if line[end] == '\\' && !escaped {
					escaped = true
				} else if line[end] == '"' && !escaped {
					break
				} else {
					escaped = false
				}
				end++
			}
			if end >= len(line) {
				result.WriteString(jsonStringStyle.Render(line[i:]))
				break
			}
			end++
			str := line[i:end]
			if end < len(line) && line[end] == ':' {
				result.WriteString(jsonKeyStyle.Render(str))
			} else {
				result.WriteString(jsonStringStyle.Render(str))
			}
			i = end
			continue
		}

		if (char >= '0' && char <= '9') || char == '-' {
			start := i
			for i < len(line) && strings.IndexByte("0123456789.eE+-", line[i]) >= 0 {
				i++
			}
			result.WriteString(jsonNumberStyle.Render(line[start:i]))
			continue
		}

		switch {
		case strings.HasPrefix(line[i:], "true"):
			result.WriteString(jsonBoolStyle.Render("true"))
			i += 4
			continue
		case strings.HasPrefix(line[i:], "false"):
			result.WriteString(jsonBoolStyle.Render("false"))
			i += 5
			continue
		case strings.HasPrefix(line[i:], "null"):
			result.WriteString(jsonNullStyle.Render("null"))
			i += 4
			continue
		}

		if strings.IndexByte("{}[],:", char) >= 0 {
			result.WriteString(jsonPunctStyle.Render(string(char)))
			i++
			continue
		}

		result.WriteByte(char)
		i++
	}

	return result.String()
}
