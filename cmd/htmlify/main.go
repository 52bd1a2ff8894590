//go:build unix

// Command htmlify converts a plain text file into paragraph and heading
// markup.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/momentics/stagebuf/control"
	"github.com/momentics/stagebuf/internal/htmlify"
	"github.com/momentics/stagebuf/internal/logtrace"
	"github.com/momentics/stagebuf/pool"
)

var (
	paragraphTag string
	headingTag   string
	configPath   string
	debug        bool
)

var rootCmd = &cobra.Command{
	Use:           "htmlify [flags] <in file> <out file>",
	Short:         "Convert plain text into HTML paragraphs and headings",
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&paragraphTag, "paragraph", "p", htmlify.DefaultParagraphTag, `paragraph tag, e.g. "<p id=\"intro\">"`)
	rootCmd.Flags().StringVarP(&headingTag, "heading", "H", htmlify.DefaultHeadingTag, "heading tag")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "log buffer pool and platform probes on exit")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := control.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logtrace.InitLogger(cfg.LogLevel)

	conv, err := htmlify.New(htmlify.Options{ParagraphTag: paragraphTag, HeadingTag: headingTag})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Paragraph tag: %s\nParagraph close: %s\nHeading tag: %s\nHeading close: %s\n",
		conv.ParagraphTag(), conv.ParagraphCloseTag(), conv.HeadingTag(), conv.HeadingCloseTag())

	staging := pool.NewBufferPool(2, cfg.Options()...)
	defer staging.Drain()
	if debug {
		probes := control.NewDebugProbes()
		control.RegisterPlatformProbes(probes)
		probes.ProbePool("staging", staging)
		defer func() {
			log.Debug().Fields(probes.DumpState()).Msg("htmlify: probes")
		}()
	}

	metrics := control.NewMetricsRegistry()
	st, err := conv.ConvertFile(args[0], args[1], staging, cfg.Buffer.InitialCapacity)
	if err != nil {
		return err
	}
	metrics.Add("bytes_read", int64(st.Read))
	metrics.Add("bytes_written", int64(st.Written))
	metrics.RecordPool(staging.Stats())
	log.Info().Fields(metrics.GetSnapshot()).Msg("htmlify: done")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "htmlify: %v\n", err)
		os.Exit(1)
	}
}
