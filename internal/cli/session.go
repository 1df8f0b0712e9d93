package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/presentation/graph"
	"github.com/espalier-dev/espalier/internal/presentation/tui"
	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
	"golang.org/x/term"
)

// RunSession executes a single interactive form session.
func RunSession(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	if !opts.Plain {
		tui.PrintBanner(espalier.Version)
	}

	source, err := createSource(opts.VaultPath)
	if err != nil {
		return err
	}

	engine, err := createEngine(opts, logger)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	form, err := source.Load(sigCtx, opts.FormID)
	if err != nil {
		return fmt.Errorf("failed to load form: %w", err)
	}

	err = runInteractive(sigCtx, engine, form, opts)
	if sigCtx.Signal() != nil {
		printSystemMessage("Interrupted.")
		return nil
	}
	return handleExecutionError(err)
}

// runInteractive drives the command loop over one session per step.
func runInteractive(ctx context.Context, engine *espalier.Engine, form *domain.Form, opts RunOptions) error {
	step, err := determineStep(form, opts.StepID)
	if err != nil {
		return err
	}

	sess, err := engine.OpenSession(step)
	if err != nil {
		return err
	}
	// The step command swaps the session; close whichever is current on exit.
	defer func() { sess.Close() }()

	if err := sess.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin session: %w", err)
	}

	render := newViewPrinter(opts.Plain)
	render(engine, sess)
	printSystemMessage("Form '%s', step '%s'. Type 'help' for commands.", form.ID, step.ID)

	scanner := bufio.NewScanner(NewInterruptibleReader(os.Stdin, ctx.Done()))
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, args := parseCommand(line)
		switch cmd {
		case "q", "quit", "exit":
			return nil

		case "help":
			printHelp()

		case "view":
			render(engine, sess)

		case "graph":
			fmt.Println(graph.GenerateMermaid(sess.Step(), &graph.Overlay{
				VisibleNodes: sess.VisibleNodeIDs(),
			}))

		case "answer":
			if len(args) < 2 {
				printSystemMessage("usage: answer <question> <value>")
				continue
			}
			q := sess.Step().QuestionByID(args[0])
			if q == nil {
				printSystemMessage("unknown question '%s'", args[0])
				continue
			}
			if err := sess.Answer(ctx, q.ID, parseAnswerValue(q, strings.Join(args[1:], " "))); err != nil {
				printSystemMessage("answer failed: %v", err)
				continue
			}
			// Text input is debounced for live typing; a full line is a
			// completed intent, so settle the view now.
			if q.Type.Kind() == domain.KindContinuous {
				if _, err := sess.Refresh(ctx); err != nil {
					printSystemMessage("refresh failed: %v", err)
				}
			}
			render(engine, sess)

		case "toggle":
			if len(args) != 2 {
				printSystemMessage("usage: toggle <question> <option>")
				continue
			}
			checked, err := isChecked(ctx, engine, args[0], args[1])
			if err != nil {
				printSystemMessage("toggle failed: %v", err)
				continue
			}
			if err := sess.ToggleOption(ctx, args[0], args[1], !checked); err != nil {
				printSystemMessage("toggle failed: %v", err)
				continue
			}
			render(engine, sess)

		case "comment":
			if len(args) < 2 {
				printSystemMessage("usage: comment <question> <text>")
				continue
			}
			if err := sess.Comment(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
				printSystemMessage("comment failed: %v", err)
				continue
			}
			render(engine, sess)

		case "step":
			if len(args) != 1 {
				printSystemMessage("usage: step <id>")
				continue
			}
			next := form.StepByID(args[0])
			if next == nil {
				printSystemMessage("form has no step '%s'", args[0])
				continue
			}
			sess.Close()
			sess, err = engine.OpenSession(next)
			if err != nil {
				return err
			}
			if err := sess.Begin(ctx); err != nil {
				return fmt.Errorf("failed to begin step %s: %w", next.ID, err)
			}
			render(engine, sess)

		default:
			printSystemMessage("unknown command '%s' (try 'help')", cmd)
		}
	}
}

// newViewPrinter returns a renderer for the session view: glamour markdown on
// a terminal, raw markdown otherwise.
func newViewPrinter(plain bool) func(*espalier.Engine, *espalier.Session) {
	pretty := !plain && term.IsTerminal(int(os.Stdout.Fd()))
	var glam func(string) (string, error)
	if pretty {
		glam = tui.NewRenderer()
	}

	return func(engine *espalier.Engine, sess *espalier.Session) {
		tree, ok := sess.Tree().(*memory.Tree)
		if !ok {
			return
		}
		responses := collectResponses(context.Background(), engine.Store(), sess.Step())
		md := tui.RenderView(sess.Step(), tree, responses)

		if glam != nil {
			if out, err := glam(md); err == nil {
				fmt.Print(out)
				return
			}
		}
		fmt.Print(md)
	}
}

// parseCommand splits an input line into a command word and its arguments.
func parseCommand(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// parseAnswerValue shapes the raw text by question type: numbers for scales
// and sliders, comma-separated lists for multi-valued controls, text as-is.
func parseAnswerValue(q *domain.Question, raw string) any {
	switch q.Type {
	case domain.TypeLikert, domain.TypeRangeSlider:
		var f float64
		if _, err := fmt.Sscanf(raw, "%g", &f); err == nil {
			return f
		}
		return raw
	case domain.TypeCheckbox, domain.TypeTags, domain.TypeRankOptions:
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return raw
	}
}

func isChecked(ctx context.Context, engine *espalier.Engine, questionID, optionID string) (bool, error) {
	resp, err := engine.Store().Get(ctx, questionID)
	if err != nil {
		return false, err
	}
	return resp.Checked(optionID), nil
}

func printHelp() {
	fmt.Println(`Commands:
  answer <question> <value>   set an answer (comma-separate multi values)
  toggle <question> <option>  flip a checkbox option
  comment <question> <text>   attach a comment
  view                        re-render the current step
  graph                       print the step's dependency graph (Mermaid)
  step <id>                   switch to another step
  quit                        leave the session`)
}
