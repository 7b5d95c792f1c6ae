package cmd

import (
	"fmt"
	"image"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orchardai/visionlab/internal/observability"
	"github.com/orchardai/visionlab/pkg/annotate"
	"github.com/orchardai/visionlab/pkg/vision/imageanalysis"
)

var readCmd = &cobra.Command{
	Use:   "read <image>",
	Short: "Read printed or handwritten text in an image",
	Long: `Run OCR over an image and print the recognized text, line by line,
with per-word confidence. An annotated copy with each line outlined is
written alongside the report.

Example:
  visionlab read images/lincoln.jpg
  visionlab read note.jpg --words --output note_lines.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

var (
	readOutput string
	readWords  bool
)

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().StringVarP(&readOutput, "output", "o", "text.jpg", "Annotated output file")
	readCmd.Flags().BoolVarP(&readWords, "words", "w", false, "Also print each word with its confidence")
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	imagePath := args[0]

	client, err := newAnalysisClient()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Cannot read image", err)
	}

	result, err := client.Analyze(ctx, data, imageanalysis.FeatureRead)
	if err != nil {
		return generateExitError("Text analysis failed", err)
	}
	if result.Read == nil || len(result.Read.Lines()) == 0 {
		fmt.Fprintln(out, "No text detected.")
		return nil
	}

	img, err := annotate.Open(imagePath)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Cannot decode image", err)
	}
	thickness := annotate.DefaultLineWidth(img.Bounds())

	fmt.Fprintln(out, "Text:")
	for _, line := range result.Read.Lines() {
		fmt.Fprintf(out, " %s\n", line.Text)
		annotate.OutlinePolygon(img, toPoints(line.BoundingPolygon), annotate.Cyan, thickness)

		if readWords {
			for _, word := range line.Words {
				fmt.Fprintf(out, "   %s (confidence %.2f%%)\n", word.Text, word.Confidence*100)
			}
		}
	}

	if err := annotate.Save(img, readOutput); err != nil {
		return exitError(foundry.ExitFileWriteError, "Cannot write annotated image", err)
	}

	observability.CLILogger.Info("Annotated text lines",
		zap.Int("lines", len(result.Read.Lines())),
		zap.String("output", readOutput))
	fmt.Fprintf(out, "Results saved in %s\n", readOutput)
	return nil
}

func toPoints(pts []imageanalysis.Point) []image.Point {
	converted := make([]image.Point, len(pts))
	for i, p := range pts {
		converted[i] = image.Pt(p.X, p.Y)
	}
	return converted
}
