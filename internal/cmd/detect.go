package cmd

import (
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orchardai/visionlab/internal/observability"
	"github.com/orchardai/visionlab/pkg/annotate"
)

var detectCmd = &cobra.Command{
	Use:   "detect <image>",
	Short: "Detect objects in an image with the published model",
	Long: `Run object detection over an image with the published Custom Vision
model. Each object predicted with more than 50% probability is printed and
outlined in an annotated copy of the image.

The model returns bounding boxes normalized to the image dimensions; they
are mapped back to pixels before drawing.

Example:
  visionlab detect produce.jpg
  visionlab detect produce.jpg --output found.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

var detectOutput string

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVarP(&detectOutput, "output", "o", "output.jpg", "Annotated output file")
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	imagePath := args[0]

	client, err := newPredictionClient()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Cannot read image", err)
	}

	result, err := client.DetectImage(ctx, cfg.Prediction.ProjectID, cfg.Prediction.ModelName, data)
	if err != nil {
		return generateExitError("Object detection failed", err)
	}

	img, err := annotate.Open(imagePath)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Cannot decode image", err)
	}
	thickness := annotate.DefaultLineWidth(img.Bounds())

	found := 0
	for _, p := range result.Predictions {
		if p.Probability <= predictionThreshold || p.BoundingBox == nil {
			continue
		}
		found++
		fmt.Fprintf(out, "%s (%.0f%%)\n", p.TagName, p.Probability*100)

		box := p.BoundingBox
		rect := annotate.PixelRect(box.Left, box.Top, box.Width, box.Height, img.Bounds())
		annotate.Outline(img, rect, annotate.Magenta, thickness)
	}

	if found == 0 {
		fmt.Fprintln(out, "No objects detected.")
		return nil
	}

	if err := annotate.Save(img, detectOutput); err != nil {
		return exitError(foundry.ExitFileWriteError, "Cannot write annotated image", err)
	}

	observability.CLILogger.Info("Annotated detections",
		zap.Int("objects", found),
		zap.String("output", detectOutput))
	fmt.Fprintf(out, "Results saved in %s\n", detectOutput)
	return nil
}
