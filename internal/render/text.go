package render

import (
	"fmt"
	"io"
	"strings"
)

// Text writes v the way the terminal client shows it. Sections appear only
// once the session has reached them.
func Text(w io.Writer, v View) error {
	var b strings.Builder

	b.WriteString("Categories:\n")
	for _, c := range v.Categories {
		mark := " "
		if c.Enabled {
			mark = "x"
		}
		fmt.Fprintf(&b, "  [%s] %-20s %s\n", mark, c.Key, c.Label)
	}

	switch {
	case v.Question == nil && v.Generating:
		b.WriteString("\nGenerating a question...\n")
	case v.Question == nil:
		b.WriteString("\nNo question yet. Type 'generate' to get one.\n")
	default:
		fmt.Fprintf(&b, "\nQuestion: %s\n", v.Question.Text)
		if v.Generating {
			b.WriteString("(a new question is on its way)\n")
		}
		if v.Answer != "" {
			fmt.Fprintf(&b, "Your answer: %s\n", v.Answer)
		}
	}

	if v.Evaluating && v.Score == nil {
		b.WriteString("\nEvaluating...\n")
	}
	if s := v.Score; s != nil {
		fmt.Fprintf(&b, "\nScore: %s", s.Display)
		if s.BestMatchName != "" {
			fmt.Fprintf(&b, " (closest strategy: %s)", s.BestMatchName)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "Matched keywords: %s\n", joinOrDash(s.Matched))
		missing := joinOrDash(s.Missing)
		if s.Marker != "" {
			missing += ", " + s.Marker
		}
		fmt.Fprintf(&b, "Missing keywords: %s\n", missing)
		if s.Explanations != "" {
			fmt.Fprintf(&b, "Notes: %s\n", s.Explanations)
		}

		switch {
		case v.References == nil:
			b.WriteString("Reference answers: (not loaded)\n")
		case len(v.References) == 0:
			b.WriteString("Reference answers: none\n")
		default:
			b.WriteString("Reference answers:\n")
			for i, r := range v.References {
				fmt.Fprintf(&b, "  %d. %s\n", i+1, r)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func joinOrDash(xs []string) string {
	if len(xs) == 0 {
		return "-"
	}
	return strings.Join(xs, ", ")
}
