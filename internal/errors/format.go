package errors

import (
	"fmt"
	"strings"
)

// Format renders an error for terminal display. WidgetErrors show
// their code, detail, and suggestion; other errors print plainly.
func Format(err error) string {
	we, ok := err.(*WidgetError)
	if !ok {
		return err.Error()
	}

	var b strings.Builder
	if we.Code != "" {
		fmt.Fprintf(&b, "error[%s]: %s\n", we.Code, we.Message)
	} else {
		fmt.Fprintf(&b, "error: %s\n", we.Message)
	}
	if we.Detail != "" {
		fmt.Fprintf(&b, "\n  %s\n", wrap(we.Detail, 72))
	}
	if we.Wrapped != nil {
		fmt.Fprintf(&b, "\n  caused by: %v\n", we.Wrapped)
	}
	if we.Suggestion != "" {
		fmt.Fprintf(&b, "\n  help: %s\n", we.Suggestion)
	}
	return b.String()
}

// wrap reflows text to the given width, indenting continuation lines
// to match the two-space lead-in.
func wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	line := 0
	for i, w := range words {
		if i > 0 {
			if line+1+len(w) > width {
				b.WriteString("\n  ")
				line = 0
			} else {
				b.WriteString(" ")
				line++
			}
		}
		b.WriteString(w)
		line += len(w)
	}
	return b.String()
}
