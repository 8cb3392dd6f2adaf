package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stark/internal/binder"
	"stark/internal/compilation"
	"stark/internal/conversions"
	"stark/internal/diag"
	"stark/internal/project"
	"stark/internal/source"
	"stark/internal/symbols"
	"stark/internal/syntax"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] <expression>",
	Short: "Bind one expression and print the resolved operators",
	Long: `Bind an operand expression such as "a:i32 + b:i64" or "-x:u8" and print
the bound tree: the operator each node resolved to, the conversions applied
to its operands and the user-defined method, if any. With --project the
types of that package and its references are in scope`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	evalCmd.Flags().String("project", "", "bind against this package (stark.toml or directory)")
	evalCmd.Flags().String("in", "", "qualified type whose namespace simple names are looked up from")
}

func runEval(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	projectArg, err := cmd.Flags().GetString("project")
	if err != nil {
		return fmt.Errorf("failed to get project flag: %w", err)
	}
	in, err := cmd.Flags().GetString("in")
	if err != nil {
		return fmt.Errorf("failed to get in flag: %w", err)
	}

	var (
		comp *compilation.Compilation
		ws   *project.Workspace
		bag  *diag.Bag
	)
	if projectArg != "" {
		ws, comp, bag, err = compile(cmd, []string{projectArg}, buildFlags{})
		if err != nil && !errors.Is(err, project.ErrInvalidManifest) {
			return err
		}
		if failed, printErr := report(cmd, bag, ws, reportOptions{format: "pretty"}); printErr != nil || failed || err != nil {
			if printErr != nil {
				return printErr
			}
			return diagnosticsFailed(cmd)
		}
	} else {
		opts, err := flagOptions(cmd)
		if err != nil {
			return err
		}
		comp = compilation.New(opts)
		if err := comp.Seal(cmd.Context()); err != nil {
			return err
		}
		ws = &project.Workspace{Files: source.NewFileSet()}
	}

	var scope symbols.Symbol
	if in != "" {
		t := comp.LookupType(in, -1)
		if t == nil {
			return fmt.Errorf("type %q not found", in)
		}
		scope = t
	}

	id := ws.Files.AddVirtual("<expr>", []byte(args[0]))
	expr, err := syntax.ParseExpr(args[0], source.Span{File: id, End: uint32(len(args[0]))}) //nolint:gosec // command-line text
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	exprDiags := diag.NewBag(0)
	bound, err := comp.Binder().BindExpr(cmd.Context(), expr, scope, diag.BagReporter{Bag: exprDiags})
	if err != nil {
		return err
	}
	var sb strings.Builder
	describeExpr(&sb, bound, 0)
	fmt.Fprint(cmd.OutOrStdout(), sb.String())
	if exprDiags.Len() > 0 {
		failed, err := report(cmd, exprDiags, ws, reportOptions{format: "pretty", withNotes: true})
		if err != nil {
			return err
		}
		if failed {
			return diagnosticsFailed(cmd)
		}
	}
	return nil
}

// describeExpr writes one line per bound node, children indented below
// their parent.
func describeExpr(sb *strings.Builder, e binder.Expr, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch x := e.(type) {
	case *binder.Literal:
		fmt.Fprintf(sb, "literal %s", x.Value)
	case *binder.Value:
		fmt.Fprintf(sb, "value %s", x.Name)
	case *binder.Unary:
		fmt.Fprintf(sb, "unary %s", x.Operator)
		writeMethod(sb, x.Method)
		writeConversions(sb, x.Conversion)
	case *binder.Binary:
		fmt.Fprintf(sb, "binary %s", x.Operator)
		writeMethod(sb, x.Method)
		writeConversions(sb, x.LeftConversion, x.RightConversion)
	case *binder.Call:
		sb.WriteString("call")
		writeMethod(sb, x.Method)
		writeConversions(sb, x.Conversions...)
	default:
		fmt.Fprintf(sb, "%T", e)
	}
	fmt.Fprintf(sb, " : %s\n", e.Type())

	switch x := e.(type) {
	case *binder.Unary:
		describeExpr(sb, x.Operand, depth+1)
	case *binder.Binary:
		describeExpr(sb, x.Left, depth+1)
		describeExpr(sb, x.Right, depth+1)
	case *binder.Call:
		for _, a := range x.Args {
			describeExpr(sb, a, depth+1)
		}
	}
}

func writeMethod(sb *strings.Builder, m symbols.MethodSymbol) {
	if m != nil {
		fmt.Fprintf(sb, " via %s", m)
	}
}

func writeConversions(sb *strings.Builder, kinds ...conversions.Kind) {
	if len(kinds) == 0 {
		return
	}
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = k.String()
	}
	sb.WriteString(" [" + strings.Join(parts, ", ") + "]")
}
