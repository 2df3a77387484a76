package main

import (
	"deptrace/maven"
	"deptrace/models"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix     = "DEPTRACE"
	usageTemplate = `Usage: {{.CommandPath}} [flags] <maven_output_text_file.txt> <search_term>

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
`
)

// usageError marks failures that should print usage text instead of a
// plain error message.
type usageError struct {
	err error
}

func (e usageError) Error() string {
	if e.err == nil {
		return "usage"
	}
	return e.err.Error()
}

func resolvePath(path string) (string, error) {
	resolved, err := homedir.Expand(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve path with home dir: %s", path)
	}
	absolute, err := filepath.Abs(resolved)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve absolute path: %s", resolved)
	}
	return absolute, nil
}

func processRootConfig(rootCtx models.RootCtx) (models.RootCtx, error) {
	switch strings.ToUpper(rootCtx.LogLevel) {
	case "TRACE":
		log.SetLevel(log.TraceLevel)
		rootCtx.LogLevel = "TRACE"
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
		rootCtx.LogLevel = "DEBUG"
	case "INFO":
		log.SetLevel(log.InfoLevel)
		rootCtx.LogLevel = "INFO"
	case "WARN", "WARNING":
		log.SetLevel(log.WarnLevel)
		rootCtx.LogLevel = "WARN"
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
		rootCtx.LogLevel = "ERROR"
	default:
		return rootCtx, usageError{errors.Errorf("unknown log level: %s", rootCtx.LogLevel)}
	}
	return rootCtx, nil
}

// bindEnv fills flags that were not given on the command line from
// DEPTRACE_* environment variables.
func bindEnv(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	var setErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) || setErr != nil {
			return
		}
		val := fmt.Sprintf("%v", v.Get(f.Name))
		if val == "" {
			return
		}
		if err := f.Value.Set(val); err != nil {
			setErr = usageError{errors.Wrapf(err, "invalid value %q for %s_%s", val, envPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")))}
		}
	})
	return setErr
}

func newRootCmd(stdout io.Writer, helpRequested *bool) *cobra.Command {
	rootCtx := models.RootCtx{}

	cmd := &cobra.Command{
		Use:           "deptrace",
		Short:         "Prints the ancestry of matching dependencies in a Maven dependency:tree report",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindEnv(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if arg == "-h" || arg == "--help" {
					*helpRequested = true
					return nil
				}
			}
			if len(args) != 2 {
				return usageError{}
			}
			ctx, err := processRootConfig(rootCtx)
			if err != nil {
				return err
			}
			file, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			return search(stdout, ctx, file, args[1])
		},
	}
	// Flags only before the file, so terms like -jre stay positional
	cmd.Flags().SetInterspersed(false)
	cmd.SetOut(stdout)
	cmd.SetUsageTemplate(usageTemplate)
	cmd.SetHelpFunc(func(*cobra.Command, []string) {
		*helpRequested = true
	})
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	cmd.Flags().StringVarP(&rootCtx.LogLevel,
		"logging",
		"",
		"WARN",
		"The level of logging to use (TRACE, DEBUG, INFO, WARN, ERROR)")
	cmd.Flags().BoolVarP(&rootCtx.NoColor,
		"no-color",
		"",
		false,
		"Disable highlighting of the search term")
	return cmd
}

func search(stdout io.Writer, rootCtx models.RootCtx, file string, term string) error {
	fmt.Fprintf(stdout, "File  : %s\n", file)
	fmt.Fprintf(stdout, "Search: %s\n", term)
	fmt.Fprintln(stdout)

	searcher := maven.Searcher{Out: stdout}
	if !rootCtx.NoColor {
		searcher.Highlight = color.New(color.BgYellow, color.FgBlack)
	}
	res, err := searcher.SearchFile(file, term)
	if err != nil {
		return err
	}

	log.Infof("Scanned %s lines (%s), %d matches, deepest level %d",
		humanize.Comma(int64(res.Lines)),
		humanize.Bytes(res.Bytes),
		res.Matches,
		res.MaxDepth)
	return nil
}

// execute runs the command line and returns the process exit status.
func execute(args []string, stdout io.Writer) int {
	helpRequested := false
	cmd := newRootCmd(stdout, &helpRequested)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if helpRequested {
		cmd.Usage()
		return 1
	}
	if err == nil {
		return 0
	}

	var usageErr usageError
	switch {
	case errors.As(err, &usageErr):
		if usageErr.err != nil {
			log.Error(usageErr.err)
		}
		cmd.Usage()
	case errors.Is(err, maven.ErrFileNotFound):
		log.Errorf("Unable to search report: %s", err)
	default:
		log.Error(err)
	}
	return 1
}

type LogFormatter struct {
}

func (*LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	switch {
	case entry.Level >= log.DebugLevel:
		return []byte(color.New(color.FgWhite).Sprintf("%s\n", entry.Message)), nil
	case entry.Level == log.WarnLevel:
		return []byte(color.New(color.FgYellow).Sprintf("%s\n", entry.Message)), nil
	case entry.Level <= log.ErrorLevel:
		return []byte(color.New(color.FgRed).Sprintf("%s\n", entry.Message)), nil
	default:
		return []byte(color.New(color.Reset).Sprintf("%s\n", entry.Message)), nil
	}
}

func main() {
	log.SetFormatter(&LogFormatter{})
	log.SetOutput(os.Stderr)
	os.Exit(execute(os.Args[1:], os.Stdout))
}
