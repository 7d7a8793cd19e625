package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/rendergraph/internal/app"
)

// Environment variables that supply defaults for flags not given on the
// command line.
const (
	EnvLogLevel  = "RENDERGRAPH_LOG_LEVEL"
	EnvLogFormat = "RENDERGRAPH_LOG_FORMAT"
	EnvFormat    = "RENDERGRAPH_FORMAT"
	EnvWorkers   = "RENDERGRAPH_WORKERS"
)

const (
	defaultLogLevel  = "warn"
	defaultLogFormat = "text"
	defaultFormat    = "text"
	defaultWorkers   = 4
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// pathList collects a repeatable path flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	if v == "" {
		return errors.New("path must not be empty")
	}
	*p = append(*p, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	return parse(args, output, os.LookupEnv)
}

func parse(args []string, output io.Writer, lookupEnv func(string) (string, bool)) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("rendergraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
rendergraph - resolves render graph descriptions into render pass load, store
and layout decisions.

Usage:
  rendergraph [options] [GRAPH_PATH...]

Arguments:
  GRAPH_PATH
    Path to a .hcl, .yaml or .yml file, or a directory searched recursively.

Options:
`)
		flagSet.PrintDefaults()
		fmt.Fprintf(output, `
Environment:
  %s, %s, %s, %s
    Defaults for -log-level, -log-format, -format and -workers.
`, EnvLogLevel, EnvLogFormat, EnvFormat, EnvWorkers)
	}

	var paths pathList
	flagSet.Var(&paths, "graph", "Path to a graph description file or directory. May be repeated.")
	flagSet.Var(&paths, "g", "Path to a graph description file or directory (shorthand).")
	envFileFlag := flagSet.String("env-file", "", "Path to a dotenv file supplying environment defaults.")
	logFormatFlag := flagSet.String("log-format", defaultLogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaultLogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	formatFlag := flagSet.String("format", defaultFormat, "Report format. Options: 'text', 'json', 'yaml' or 'dot'.")
	workersFlag := flagSet.Int("workers", defaultWorkers, "Number of graphs resolved concurrently.")
	validateFlag := flagSet.Bool("validate-only", false, "Resolve and check the graphs without creating render passes.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths = append(paths, flagSet.Args()...)
	if len(paths) == 0 {
		slog.Debug("No graph path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	env := lookupEnv
	if *envFileFlag != "" {
		fileEnv, err := godotenv.Read(*envFileFlag)
		if err != nil {
			return nil, false, usageError("failed to read env file %s: %v", *envFileFlag, err)
		}
		slog.Debug("Env file loaded.", "path", *envFileFlag, "keys", len(fileEnv))
		env = func(key string) (string, bool) {
			if v, ok := lookupEnv(key); ok {
				return v, true
			}
			v, ok := fileEnv[key]
			return v, ok
		}
	}

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })
	fromEnv := func(name, key string, value *string) {
		if set[name] {
			return
		}
		if v, ok := env(key); ok && v != "" {
			*value = v
		}
	}
	fromEnv("log-level", EnvLogLevel, logLevelFlag)
	fromEnv("log-format", EnvLogFormat, logFormatFlag)
	fromEnv("format", EnvFormat, formatFlag)

	workers := *workersFlag
	if v, ok := env(EnvWorkers); ok && v != "" && !set["workers"] {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, false, usageError("invalid %s: %q is not a number", EnvWorkers, v)
		}
		workers = n
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		GraphPaths:   paths,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		OutputFormat: strings.ToLower(*formatFlag),
		WorkerCount:  workers,
		ValidateOnly: *validateFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
