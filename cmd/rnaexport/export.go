package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kerbaras/rnaexport/pkg/app"
	"github.com/kerbaras/rnaexport/pkg/app/components"
	"github.com/kerbaras/rnaexport/pkg/data"
	"github.com/kerbaras/rnaexport/pkg/services"
	"github.com/spf13/cobra"
)

var (
	dataType    string
	plainOutput bool
)

var exportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export the results of a search query",
	Long: "Submit an export job for a search query, follow it until it finishes and save the file.\n" +
		"Example: rnaexport export 'HOTAIR AND so_rna_type_name:\"lncRNA\"' -t json",
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{annotationNetwork: "true", annotationTUI: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		req := controller.NewRequest(query, data.DataType(dataType))

		if plainOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "📤 Exporting '%s' as %s\n", query, req.DataType)
			return followPlain(cmd, func(ctx context.Context, e *services.Exporter) (data.JobStatus, error) {
				return e.Run(ctx, req)
			})
		}

		status, err := app.NewApp(controller).RunExport(req)
		return finish(cmd, status, err, "")
	},
}

func init() {
	for _, c := range []*cobra.Command{exportCmd, resumeCmd} {
		c.Flags().BoolVar(&plainOutput, "plain", false, "Print progress lines instead of opening the TUI")
	}
	for _, c := range []*cobra.Command{exportCmd, resumeCmd, statusCmd} {
		c.Flags().StringVarP(&dataType, "data-type", "t", string(data.DataTypeFasta), "Export format (fasta, json, ...)")
	}
}

// followPlain runs an exporter and prints every update until it stops.
// Ctrl+C cancels the polls.
func followPlain(cmd *cobra.Command, start func(context.Context, *services.Exporter) (data.JobStatus, error)) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter := controller.NewExporter()

	var jobID string
	done := make(chan struct{})
	go func() {
		defer close(done)
		var last string
		for progress := range exporter.Updates() {
			if progress.JobID != "" {
				jobID = progress.JobID
			}
			line := progressLine(progress)
			if line == last {
				continue
			}
			last = line
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}()

	status, err := start(ctx, exporter)
	// Run has returned, so nothing sends on the channel any more
	exporter.Close()
	<-done

	return finish(cmd, status, err, jobID)
}

func progressLine(p services.ExportProgress) string {
	line := fmt.Sprintf("  [%s] Status: %s %s", p.Phase, p.Status.Text, components.FormatPercent(p.Status.Progress))
	if p.FilePath != "" {
		line += "\n✅ Saved to " + p.FilePath
	}
	return line
}

// finish turns the end of an export into the command's result
func finish(cmd *cobra.Command, status data.JobStatus, err error, jobID string) error {
	out := cmd.OutOrStdout()
	switch {
	case errors.Is(err, context.Canceled):
		printStopped(out, jobID)
		return nil
	case err != nil:
		return err
	case !status.State.Terminal():
		printStopped(out, jobID)
		return nil
	}
	fmt.Fprintf(out, "Status: %s\n", status.Text)
	return nil
}

func printStopped(w io.Writer, jobID string) {
	if jobID == "" {
		fmt.Fprintln(w, "⏸  Export stopped. Find it with 'rnaexport list' and continue with 'rnaexport resume'.")
		return
	}
	fmt.Fprintf(w, "⏸  Export stopped. Continue with: rnaexport resume %s -t %s\n", jobID, dataType)
}
