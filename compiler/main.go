package main

import (
	"dflat/compiler/internal"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

var (
	output     = flag.String("o", "", "the file generated C code is written to, stdout if empty")
	trace      = flag.Bool("trace", false, "log every compiler stage to stderr")
	emitTokens = flag.Bool("emit-tokens", false, "print the token stream and stop")
	emitAST    = flag.Bool("emit-ast", false, "print the parsed program and stop")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dflatc [options] SOURCEFILE\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(flag.Arg(0)))
}

func run(path string) int {
	level := slog.LevelWarn
	if *trace {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	source, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	var out string
	switch {
	case *emitTokens:
		tokens, err := internal.TokenizeSource(string(source))
		if err != nil {
			return fail(err)
		}
		for _, token := range tokens {
			out += token.String() + "\n"
		}
	case *emitAST:
		program, err := internal.ParseSource(string(source))
		if err != nil {
			return fail(err)
		}
		out = program.String()
	default:
		out, err = internal.Compile(string(source), logger.With("path", path))
		if err != nil {
			return fail(err)
		}
	}
	if *output == "" {
		fmt.Print(out)
		return 0
	}
	if err = os.WriteFile(*output, []byte(out), 0644); err != nil {
		return fail(err)
	}
	return 0
}

// fail reports err once on stderr. Compile errors already carry their kind.
func fail(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
