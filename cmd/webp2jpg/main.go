// Command webp2jpg converts WebP images to JPEG.
//
// Usage:
//
//	webp2jpg [flags] <file|dir>...      convert every WebP input to <name>_c.jpg
//	webp2jpg info <file>...             print the features of WebP files
//	webp2jpg version                    print the build version
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var errNoInput = errors.New("no input files")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by the commands of one invocation.
type app struct {
	cfg Config
	log *logrus.Logger
}

func newLogger(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return log, nil
}

// setup resolves the configuration and creates the logger. It runs before
// every command.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd.Flags())
	if err != nil {
		return err
	}
	log, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "webp2jpg [flags] <file|dir>...",
		Short: "Convert WebP images to JPEG",
		Long: `webp2jpg decodes WebP images and writes them as JPEG files next to the
originals, named <name><suffix>.jpg. Directories are expanded to the .webp
files they contain. Inputs that are not WebP files are skipped.`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args)
		},
	}
	registerFlags(cmd.PersistentFlags())

	cmd.AddCommand(newConvertCommand(a))
	cmd.AddCommand(newInfoCommand(a))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newConvertCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <file|dir>...",
		Short: "Convert WebP images to JPEG (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args)
		},
	}
}

func (a *app) runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		cmd.Usage() //nolint:errcheck
		return errNoInput
	}
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}
	conv, err := newConverter(a.cfg, a.log)
	if err != nil {
		return err
	}
	a.log.WithField("workers", a.cfg.Workers).Debugf("converting %d files", len(inputs))
	return conv.run(inputs)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "webp2jpg %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", GitCommit)
			fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", BuildDate)
			return nil
		},
	}
}
