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
	"github.com/orchardai/visionlab/pkg/vision/face"
)

var facesCmd = &cobra.Command{
	Use:   "faces <image>",
	Short: "Detect faces and their attributes in an image",
	Long: `Detect faces in an image and report head pose, occlusion, and
accessories for each one. An annotated copy with each face outlined is
written alongside the report.

Example:
  visionlab faces images/people.jpg
  visionlab faces portrait.png --output found.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runFaces,
}

var facesOutput string

func init() {
	rootCmd.AddCommand(facesCmd)

	facesCmd.Flags().StringVarP(&facesOutput, "output", "o", "detected_faces.jpg", "Annotated output file")
}

func runFaces(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	imagePath := args[0]

	client, err := newFaceClient()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Cannot read image", err)
	}

	faces, err := client.Detect(ctx, data, face.DetectOptions{
		Attributes: []string{
			face.AttributeHeadPose,
			face.AttributeOcclusion,
			face.AttributeAccessories,
		},
	})
	if err != nil {
		return generateExitError("Face detection failed", err)
	}

	if len(faces) == 0 {
		fmt.Fprintln(out, "No faces detected.")
		return nil
	}

	img, err := annotate.Open(imagePath)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Cannot decode image", err)
	}
	thickness := annotate.DefaultLineWidth(img.Bounds())

	for i, f := range faces {
		fmt.Fprintf(out, "Face %d:\n", i+1)
		if attrs := f.FaceAttributes; attrs != nil {
			if hp := attrs.HeadPose; hp != nil {
				fmt.Fprintf(out, " - Head pose (pitch): %v\n", hp.Pitch)
				fmt.Fprintf(out, " - Head pose (roll): %v\n", hp.Roll)
				fmt.Fprintf(out, " - Head pose (yaw): %v\n", hp.Yaw)
			}
			if oc := attrs.Occlusion; oc != nil {
				fmt.Fprintf(out, " - Forehead occluded: %v\n", oc.ForeheadOccluded)
				fmt.Fprintf(out, " - Eye occluded: %v\n", oc.EyeOccluded)
				fmt.Fprintf(out, " - Mouth occluded: %v\n", oc.MouthOccluded)
			}
			for _, acc := range attrs.Accessories {
				fmt.Fprintf(out, " - Accessory: %s (%.2f)\n", acc.Type, acc.Confidence)
			}
		}

		r := f.FaceRectangle
		rect := image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height).Intersect(img.Bounds())
		annotate.Outline(img, rect, annotate.LightGreen, thickness)
	}

	if err := annotate.Save(img, facesOutput); err != nil {
		return exitError(foundry.ExitFileWriteError, "Cannot write annotated image", err)
	}

	observability.CLILogger.Info("Annotated faces",
		zap.Int("count", len(faces)),
		zap.String("output", facesOutput))
	fmt.Fprintf(out, "Results saved in %s\n", facesOutput)
	return nil
}
