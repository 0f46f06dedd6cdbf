package internal

import (
	"log/slog"
	"os"
	"strings"
)

// Compile translates one dflat source into C. The pipeline stops at the first error and
// nothing is returned in that case. A nil logger means slog.Default().
func Compile(source string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("compiler: start parser", "bytes", len(source))
	program, err := ParseSource(source)
	if err != nil {
		return "", err
	}
	logger.Debug("compiler: start type checker", "classes", len(program.Classes))
	env, err := typeCheck(program)
	if err != nil {
		return "", err
	}
	logger.Debug("compiler: start generate codes")
	code, err := generateCodes(program, env)
	if err != nil {
		return "", err
	}
	logger.Debug("compiler: done", "bytes", len(code))
	return code, nil
}

// CompileFile reads the source at path and compiles it.
func CompileFile(path string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	logger.Debug("compiler: read source", "path", path)
	return Compile(string(source), logger)
}

// ParseSource tokenizes and parses source without checking it.
func ParseSource(source string) (*ProgramAst, error) {
	parser := &Parser{}
	return parser.Parse(strings.NewReader(source))
}

// TokenizeSource returns the tokens of source, one per entry, as the parser sees them.
func TokenizeSource(source string) ([]*Token, error) {
	return tokenize(source)
}
