package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dany5639/webp"
)

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>...",
		Short: "Print the features of WebP files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				if err := printInfo(cmd, path); err != nil {
					failed++
					a.log.WithField("file", path).WithField("kind", errorKind(err)).WithError(err).Error("cannot read features")
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
}

func printInfo(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	feat, err := webp.GetFeatures(data)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:          %s\n", path)
	fmt.Fprintf(out, "Width:         %d\n", feat.Width)
	fmt.Fprintf(out, "Height:        %d\n", feat.Height)
	fmt.Fprintf(out, "Has alpha:     %v\n", feat.HasAlpha)
	fmt.Fprintf(out, "Has animation: %v\n", feat.HasAnimation)
	fmt.Fprintf(out, "Format:        %s\n", feat.Format)
	return nil
}
