package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orchardai/visionlab/internal/observability"
	"github.com/orchardai/visionlab/pkg/labelset"
	"github.com/orchardai/visionlab/pkg/trainer"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload labeled training images with tagged regions",
	Long: `Upload object-detection training images as a single batch, using a
label set file that maps each image to its tagged bounding-box regions:

  {
    "files": [
      {
        "filename": "image11.jpg",
        "tags": [{"tag": "apple", "left": 0.1, "top": 0.2,
                  "width": 0.3, "height": 0.4}]
      }
    ]
  }

Region coordinates are normalized to the image dimensions. Tag names are
resolved against the project's tags; unknown names abort the upload.

Example:
  visionlab upload --labels tagged-images.json --images images`,
	RunE: runUpload,
}

var (
	uploadLabels string
	uploadImages string
	uploadRate   float64
)

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVarP(&uploadLabels, "labels", "l", "tagged-images.json", "Label set file (JSON or YAML)")
	uploadCmd.Flags().StringVar(&uploadImages, "images", "images", "Folder the label set's filenames are relative to")
	uploadCmd.Flags().Float64Var(&uploadRate, "rate", 0, "Upload rate limit in requests per second (0 = unlimited)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	client, err := newTrainingClient()
	if err != nil {
		return err
	}

	set, err := labelset.Load(uploadLabels)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Cannot load label set", err)
	}
	if err := set.Validate(); err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid label set", err)
	}

	jobID := uuid.New().String()
	observability.CLILogger.Info("Uploading label set",
		zap.String("job_id", jobID),
		zap.String("labels", uploadLabels),
		zap.Int("files", len(set.Files)),
		zap.Strings("tags", set.TagNames()))

	uploader, err := trainer.NewUploader(client, trainer.UploadConfig{
		ProjectID: cfg.Training.ProjectID,
		RateLimit: uploadRate,
	})
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid upload configuration", err)
	}

	fmt.Fprintln(out, "Uploading images...")
	result, err := uploader.UploadLabelSet(ctx, uploadImages, set)
	if err != nil {
		return generateExitError("Image upload failed", err)
	}

	if !result.IsBatchSuccessful {
		fmt.Fprintln(out, "Image batch upload failed.")
		for _, img := range result.Images {
			fmt.Fprintf(out, "Image status: %s\n", img.Status)
		}
		return exitError(foundry.ExitExternalServiceUnavailable, "Image batch upload failed",
			fmt.Errorf("service rejected part of the batch"))
	}

	fmt.Fprintf(out, "Uploaded %d images\n", len(set.Files))
	return nil
}
