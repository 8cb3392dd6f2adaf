package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"stark/internal/project"
	"stark/internal/trace"
)

var (
	traceCleanup = func() {}
	traceRing    *trace.RingTracer
)

// setupTracing inspects trace-related flags and attaches a tracer to the
// command context. It returns a cleanup function that flushes and closes it.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace without a level means phase boundaries
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		setTracer(cmd, trace.Nop)
		return func() {}, nil
	}
	return installTracer(cmd, level, traceOutput, ringSize)
}

// tracingFromManifest applies [build] trace settings when no trace flag
// was given.
func tracingFromManifest(cmd *cobra.Command, m *project.Manifest) error {
	if trace.FromContext(cmd.Context()) != trace.Nop || m.Config.Build.TraceLevel == "" {
		return nil
	}
	level, err := trace.ParseLevel(m.Config.Build.TraceLevel)
	if err != nil {
		return fmt.Errorf("%s: %w", m.Path, err)
	}
	if level == trace.LevelOff {
		return nil
	}
	output := m.Config.Build.TraceOutput
	if output != "" && output != "-" && !filepath.IsAbs(output) {
		output = filepath.Join(m.Root, output)
	}
	cleanup, err := installTracer(cmd, level, output, 0)
	if err != nil {
		return err
	}
	prev := traceCleanup
	traceCleanup = func() {
		cleanup()
		prev()
	}
	return nil
}

func installTracer(cmd *cobra.Command, level trace.Level, output string, ringSize int) (func(), error) {
	stream, err := trace.New(trace.Config{Level: level, OutputPath: output})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	tracer := stream
	if ringSize > 0 {
		traceRing = trace.NewRingTracer(ringSize, level)
		tracer = trace.NewMultiTracer(level, stream, traceRing)
	}
	setTracer(cmd, tracer)

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func setTracer(cmd *cobra.Command, t trace.Tracer) {
	ctx := trace.WithTracer(cmd.Context(), t)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
}

// flushTracing runs the pending trace and profile cleanup once.
// PersistentPostRun is skipped when a command fails, so failing commands
// call it themselves.
func flushTracing() {
	cleanup := traceCleanup
	traceCleanup = func() {}
	cleanup()
}

// dumpTraceOnPanic writes the in-memory trace ring to stderr and re-panics.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if traceRing != nil {
		dumpRing(os.Stderr, traceRing)
	}
	panic(r)
}

func dumpRing(w io.Writer, ring *trace.RingTracer) {
	fmt.Fprintf(w, "--- last %d trace events ---\n", len(ring.Snapshot()))
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}
