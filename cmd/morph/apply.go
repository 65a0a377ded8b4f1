package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vango-dev/morph/internal/config"
	"github.com/vango-dev/morph/internal/errors"
	"github.com/vango-dev/morph/pkg/dom"
	"github.com/vango-dev/morph/pkg/instrument"
	"github.com/vango-dev/morph/pkg/morph"
	"github.com/vango-dev/morph/pkg/render"
)

type applyOptions struct {
	keyAttr             string
	childrenOnly        bool
	ignoreControlValues bool
	pretty              bool
	state               bool
	journal             bool
	summary             bool
	output              string
}

func applyCmd(g *globalFlags) *cobra.Command {
	var opts applyOptions

	cmd := &cobra.Command{
		Use:   "apply <live.html> <target.html>",
		Short: "Reconcile a live HTML file against a target",
		Long: `Apply parses both files, reconciles the live tree so it matches the
target, and prints the resulting live tree.

Either path may be "-" to read from stdin. Each file holds a single
root node; surrounding whitespace is ignored.

Examples:
  morph apply page.html next.html
  morph apply --key data-key --journal list.html list-sorted.html
  curl -s localhost:7070/trees/ID | morph apply - next.html --pretty`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			a := &applier{
				in:     cmd.InOrStdin(),
				out:    cmd.OutOrStdout(),
				errOut: cmd.ErrOrStderr(),
				opts:   opts,
			}
			return a.run(cmd.Context(), cfg, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.keyAttr, "key", "k", "", "Attribute to read node keys from (default: reconcile.keyAttribute, then id)")
	flags.BoolVar(&opts.childrenOnly, "children-only", false, "Reconcile only the children of the two roots")
	flags.BoolVar(&opts.ignoreControlValues, "ignore-control-values", false, "Leave form control state alone")
	flags.BoolVarP(&opts.pretty, "pretty", "p", false, "Indent the output")
	flags.BoolVar(&opts.state, "state", false, "Write form controls with their live state instead of their attributes")
	flags.BoolVarP(&opts.journal, "journal", "j", false, "Print every applied mutation to stderr")
	flags.BoolVar(&opts.summary, "summary", false, "Print a one-line summary to stderr")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the result to a file instead of stdout")

	return cmd
}

// applier runs one apply command against its streams.
type applier struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	opts   applyOptions
}

func (a *applier) run(ctx context.Context, cfg *config.Config, livePath, targetPath string) error {
	if livePath == "-" && targetPath == "-" {
		return fmt.Errorf("only one of the inputs can be read from stdin")
	}

	logger, err := newLogger(a.errOut, cfg.Log)
	if err != nil {
		return err
	}

	live, err := a.parse(livePath)
	if err != nil {
		return err
	}
	target, err := a.parse(targetPath)
	if err != nil {
		return err
	}

	opts := a.reconcileOptions(cfg.Reconcile)
	if a.opts.journal {
		opts.OnMutation = a.printMutation(live)
	}

	runner := instrument.NewRunner(instrument.WithLogger(logger))
	result, summary, err := runner.Run(ctx, live, target, opts)
	if err != nil {
		return err
	}

	r := render.NewRenderer(render.RendererConfig{Pretty: a.opts.pretty, State: a.opts.state})
	if a.opts.output != "" {
		html, err := r.RenderToString(result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(a.opts.output, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", a.opts.output, err)
		}
	} else {
		if err := r.RenderToWriter(a.out, result); err != nil {
			return err
		}
		if !a.opts.pretty {
			fmt.Fprintln(a.out)
		}
	}

	if a.opts.summary {
		success(a.errOut, "%d mutations in %s (%d added, %d discarded, %d updated)",
			summary.Total, summary.Duration, summary.Added, summary.Discarded, summary.Updated)
	}
	if a.opts.output != "" {
		success(a.errOut, "Wrote %s", a.opts.output)
	}
	return nil
}

// parse reads path, or stdin for "-", and parses its single root node.
func (a *applier) parse(path string) (*dom.Node, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	n, err := dom.ParseElement(string(data))
	if err != nil {
		e := errors.FromError(err, "M003")
		detail := path
		if e.Detail != "" {
			detail += ": " + e.Detail
		}
		return nil, e.WithDetail(detail)
	}
	return n, nil
}

// reconcileOptions merges the command flags over the config.
func (a *applier) reconcileOptions(c config.ReconcileConfig) morph.Options {
	opts := morph.Options{
		ChildrenOnly:        a.opts.childrenOnly || c.ChildrenOnly,
		IgnoreControlValues: a.opts.ignoreControlValues || c.IgnoreControlValues,
	}
	key := a.opts.keyAttr
	if key == "" {
		key = c.KeyAttribute
	}
	if key != "" {
		opts.GetNodeKey = morph.KeyAttr(key)
	}
	return opts
}

var opColors = map[morph.Op]*color.Color{
	morph.OpInsertNode:  color.New(color.FgGreen),
	morph.OpRemoveNode:  color.New(color.FgRed),
	morph.OpReplaceNode: color.New(color.FgRed),
	morph.OpMoveNode:    color.New(color.FgCyan),
	morph.OpSetProperty: color.New(color.FgMagenta),
}

// printMutation returns an OnMutation hook writing one line per mutation.
// Paths are child indexes from the live root at the time of the mutation.
func (a *applier) printMutation(live *dom.Node) func(morph.Mutation) {
	root := live.Root()
	return func(m morph.Mutation) {
		if m.Op == morph.OpReplaceNode && m.Parent == nil {
			root = m.Node
		}
		op := fmt.Sprintf("%-11s", m.Op)
		if c, ok := opColors[m.Op]; ok {
			op = c.Sprint(op)
		}

		var b strings.Builder
		b.WriteString(op)
		b.WriteString(" ")
		b.WriteString(formatPath(dom.Path(root, m.Node)))
		b.WriteString(" ")
		b.WriteString(m.Node.String())
		if m.Name != "" {
			fmt.Fprintf(&b, " %s=%q", m.Name, m.Value)
		} else if m.Op == morph.OpSetText {
			fmt.Fprintf(&b, " %q", m.Value)
		}
		fmt.Fprintln(a.errOut, b.String())
	}
}

func formatPath(path []int) string {
	if path == nil {
		return faint("-")
	}
	parts := make([]string, len(path))
	for i, idx := range path {
		parts[i] = strconv.Itoa(idx)
	}
	return "/" + strings.Join(parts, "/")
}
