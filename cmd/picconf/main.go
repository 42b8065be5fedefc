package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
)

var (
	opts = options{}

	rootCmd = &cobra.Command{
		Use:   "picconf [flags] <input.PIC>",
		Short: "Generate configuration sector code from an EDC device file",
		Long: `picconf reads the configuration fuse sector of a PIC32 EDC (.PIC) device file
and generates a Go package describing its configuration words: one type per
field, a builder with masking setters and the default sector contents.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]

			logger := log.New(io.Discard, "", 0)
			if opts.verbose {
				logger = log.New(os.Stderr, "picconf: ", 0)
			}

			return generate(opts, cmd.OutOrStdout(), logger)
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file. Default: standard output")
	rootCmd.Flags().StringVarP(&opts.pkg, "package", "p", env.Str("PICCONF_PACKAGE", "config"), "generated package name. Default: $PICCONF_PACKAGE")
	rootCmd.Flags().StringVarP(&opts.quirks, "quirks", "q", env.Str("PICCONF_QUIRKS"), "additional quirk table (YAML). Default: $PICCONF_QUIRKS")
	rootCmd.Flags().BoolVar(&opts.noQuirks, "no-quirks", false, "do not patch known EDC errata")
	rootCmd.Flags().StringVar(&opts.mode, "mode", "", "DCRMode describing the field layout. Default: DS.0")
	rootCmd.Flags().StringVarP(&opts.tags, "tags", "t", "", "build constraint for the generated file, or \"auto\" to select the device family")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", env.Bool("PICCONF_VERBOSE"), "print applied quirks and the extracted sector")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.New(os.Stderr, "picconf: ", 0).Println(err)
		os.Exit(1)
	}
}
