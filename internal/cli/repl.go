// Package cli is the line-oriented terminal front end over a session
// controller.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/quizapi"
	"github.com/mind-engage/mindengage-quiz/internal/render"
	"github.com/mind-engage/mindengage-quiz/internal/session"
)

const helpText = `commands:
  categories        list categories and whether they are enabled
  toggle <key>      enable/disable a category
  generate | new    ask the quiz service for a question
  answer <text>     set the answer draft (replaces the previous one)
  evaluate | eval   score the current answer
  show              print the whole session
  help              this text
  quit | exit
`

type REPL struct {
	ctl   *session.Controller
	out   io.Writer
	limit int
}

func New(ctl *session.Controller, out io.Writer, missingLimit int) *REPL {
	return &REPL{ctl: ctl, out: out, limit: missingLimit}
}

// Run reads commands from in until EOF, quit, or ctx is done. Failed remote
// calls are reported to out and do not end the loop.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	r.prompt()
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := r.Exec(ctx, sc.Text())
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		r.prompt()
	}
	return sc.Err()
}

func (r *REPL) prompt() { fmt.Fprint(r.out, "> ") }

// Exec runs a single command line. The returned error is only set when
// writing to out fails.
func (r *REPL) Exec(ctx context.Context, line string) (quit bool, err error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help", "?":
		_, err = io.WriteString(r.out, helpText)
	case "categories", "cats":
		err = r.categories()
	case "toggle":
		if arg == "" {
			_, err = fmt.Fprintln(r.out, "usage: toggle <key>")
			break
		}
		if _, terr := r.ctl.Toggle(arg); terr != nil {
			_, err = fmt.Fprintf(r.out, "unknown category %q (try: categories)\n", arg)
			break
		}
		err = r.categories()
	case "generate", "new":
		out, gerr := r.ctl.Generate(ctx)
		if gerr != nil {
			err = r.failure("could not generate a question", gerr)
			break
		}
		if out == session.Applied {
			err = r.question()
		}
	case "answer":
		_, aerr := r.ctl.SetAnswer(arg)
		switch {
		case errors.Is(aerr, session.ErrNoQuestion):
			_, err = fmt.Fprintln(r.out, "no question yet (try: generate)")
		case errors.Is(aerr, session.ErrGenerating):
			_, err = fmt.Fprintln(r.out, "a new question is on its way; answer it once it arrives")
		}
	case "evaluate", "eval":
		out, eerr := r.ctl.Evaluate(ctx)
		switch {
		case out == session.Skipped:
			_, err = fmt.Fprintln(r.out, "nothing to evaluate: generate a question and enter an answer first")
		case eerr != nil && out != session.Applied:
			err = r.failure("could not evaluate the answer", eerr)
		default:
			if eerr != nil {
				if err = r.failure("could not load reference answers", eerr); err != nil {
					break
				}
			}
			if out != session.Superseded {
				err = r.show()
			}
		}
	case "show":
		err = r.show()
	default:
		_, err = fmt.Fprintf(r.out, "unknown command %q (try: help)\n", cmd)
	}
	return false, err
}

func (r *REPL) categories() error {
	st := r.ctl.Snapshot()
	for _, c := range render.Categories(r.ctl.Catalog(), st.Selection) {
		mark := " "
		if c.Enabled {
			mark = "x"
		}
		if _, err := fmt.Fprintf(r.out, "[%s] %-18s %s\n", mark, c.Key, c.Label); err != nil {
			return err
		}
	}
	return nil
}

func (r *REPL) question() error {
	q := r.ctl.Snapshot().Question
	if q == nil {
		return nil
	}
	_, err := fmt.Fprintf(r.out, "Question: %s\n", q.Text)
	return err
}

func (r *REPL) show() error {
	return render.Text(r.out, render.NewView(r.ctl.Snapshot(), r.ctl.Catalog(), r.limit))
}

func (r *REPL) failure(what string, err error) error {
	var te *quizapi.TransportError
	if errors.As(err, &te) && te.Detail != "" {
		_, werr := fmt.Fprintf(r.out, "%s: %s\n", what, te.Detail)
		return werr
	}
	_, werr := fmt.Fprintf(r.out, "%s: %v\n", what, err)
	return werr
}
