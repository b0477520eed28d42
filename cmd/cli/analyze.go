package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kirillkom/mail-check/internal/adapters/cli"
	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/core/usecase"
	"github.com/kirillkom/mail-check/internal/infrastructure/extractor/preview"
)

type analyzeOptions struct {
	text   string
	file   string
	output string
	copy   bool
}

func newAnalyzeCmd(global *globalOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze (--file PATH | --text TEXT)",
		Short: "Classify one email",
		Long: `Classify one email from a .txt/.pdf file or from pasted text.

Examples:
  # Classify a file
  mailcheck analyze --file ./pedido.pdf

  # Classify text and copy the suggested reply
  mailcheck analyze --text "Preciso do status do chamado 4521" --copy

  # Machine-readable output
  mailcheck analyze --file ./pedido.txt -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.text, "text", "", "Email text to classify")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Email file to classify (.txt or .pdf, up to 5MB)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", cli.FormatHuman, "Output format (human, json, yaml)")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the suggested reply to the clipboard")
	cmd.MarkFlagsMutuallyExclusive("text", "file")
	cmd.MarkFlagsOneRequired("text", "file")

	return cmd
}

func runAnalyze(ctx context.Context, global *globalOptions, opts *analyzeOptions) error {
	if !cli.ValidFormat(opts.output) {
		return fmt.Errorf("unsupported output format %q", opts.output)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	controller := usecase.NewSubmissionController(global.gateway(), preview.NewExtractor())
	if opts.file != "" {
		upload, err := cli.LoadUpload(opts.file)
		if err != nil {
			return err
		}
		controller.SelectMode(domain.ModeFile)
		controller.SetFile(upload)
	} else {
		controller.SelectMode(domain.ModeText)
		controller.SetText(opts.text)
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Analyzing..."
	s.Start()
	result, err := controller.Submit(ctx)
	s.Stop()
	if err != nil {
		return failure(err, controller.Snapshot().Form.Error)
	}

	view := usecase.NewResultView(*result)
	if err := cli.Render(os.Stdout, view, opts.output); err != nil {
		return err
	}

	if opts.copy {
		copyReply(view)
	}
	if opts.output == cli.FormatHuman {
		printFeedbackHint(view, controller.Snapshot().Preview)
	}
	return nil
}

func copyReply(view usecase.ResultView) {
	control := usecase.NewCopyControl(view.Reply, cli.SystemClipboard{}, nil)
	err := control.Copy()
	switch {
	case errors.Is(err, usecase.ErrNothingToCopy):
		color.New(color.FgYellow).Fprintln(os.Stderr, "No suggested reply to copy.")
	case errors.Is(err, cli.ErrClipboardUnavailable):
		color.New(color.FgYellow).Fprintf(os.Stderr, "Could not copy the reply: %v\n", err)
	case err != nil:
		color.New(color.FgRed).Fprintf(os.Stderr, "Could not copy the reply: %v\n", err)
	default:
		color.New(color.FgGreen).Fprintln(os.Stderr, control.Label())
	}
}

func printFeedbackHint(view usecase.ResultView, textPreview string) {
	corrected := domain.CategoryImprodutivo
	if view.Category == domain.CategoryImprodutivo {
		corrected = domain.CategoryProdutivo
	}
	fmt.Fprintf(os.Stderr, "%s mailcheck feedback --original %s --corrected %s --preview %q\n",
		color.HiBlackString("Wrong classification? Run:"), view.Category, corrected, textPreview)
}
