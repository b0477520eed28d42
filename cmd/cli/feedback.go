package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/core/usecase"
)

type feedbackOptions struct {
	original  string
	corrected string
	preview   string
}

func newFeedbackCmd(global *globalOptions) *cobra.Command {
	opts := &feedbackOptions{}

	cmd := &cobra.Command{
		Use:   "feedback --original CATEGORY --corrected CATEGORY",
		Short: "Correct a classification",
		Long: `Send a correction for a classification the service got wrong.

Example:
  mailcheck feedback --original Produtivo --corrected Improdutivo --preview "Feliz natal a todos"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedback(cmd.Context(), global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.original, "original", "", "Category the service returned")
	cmd.Flags().StringVar(&opts.corrected, "corrected", "", "Correct category")
	cmd.Flags().StringVar(&opts.preview, "preview", "", "Start of the email text")
	_ = cmd.MarkFlagRequired("original")
	_ = cmd.MarkFlagRequired("corrected")

	return cmd
}

func runFeedback(ctx context.Context, global *globalOptions, opts *feedbackOptions) error {
	original, ok := domain.ParseCategory(opts.original)
	if !ok {
		return domain.ErrUnknownCategory
	}
	corrected, ok := domain.ParseCategory(opts.corrected)
	if !ok {
		return domain.ErrUnknownCategory
	}
	if ctx == nil {
		ctx = context.Background()
	}

	panel := usecase.NewFeedbackPanel(global.gateway(), original, domain.PreviewOf(opts.preview))
	panel.Open()
	panel.Select(corrected)
	if err := panel.Submit(ctx); err != nil {
		return failure(err, panel.Snapshot().Error)
	}

	color.New(color.FgGreen).Fprintln(os.Stdout, "Thanks for the feedback!")
	return nil
}
