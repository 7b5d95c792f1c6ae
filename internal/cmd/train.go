package cmd

import (
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orchardai/visionlab/internal/observability"
	"github.com/orchardai/visionlab/pkg/trainer"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the Custom Vision model and watch until it finishes",
	Long: `Start a training iteration on the Custom Vision project and watch the
remote job until it reaches a terminal status. Progress is printed once per
poll; on success the command reports the trained model, on failure it exits
nonzero.

With --images, labeled images are uploaded first from one subfolder per
project tag:

  training-images/
    apple/   image01.jpg ...
    banana/  image01.jpg ...

Example:
  visionlab train
  visionlab train --images training-images
  visionlab train --interval 10s`,
	RunE: runTrain,
}

var (
	trainImages   string
	trainInterval time.Duration
	trainRate     float64
)

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainImages, "images", "", "Upload training images from this folder first (one subfolder per tag)")
	trainCmd.Flags().DurationVar(&trainInterval, "interval", 0, "Delay between status polls (default from config, 5s)")
	trainCmd.Flags().Float64Var(&trainRate, "rate", 0, "Upload rate limit in requests per second (0 = unlimited)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	client, err := newTrainingClient()
	if err != nil {
		return err
	}

	jobID := uuid.New().String()
	projectID := cfg.Training.ProjectID

	project, err := client.GetProject(ctx, projectID)
	if err != nil {
		return generateExitError("Cannot access project", err)
	}
	observability.CLILogger.Info("Connected to project",
		zap.String("job_id", jobID),
		zap.String("project_id", project.ID),
		zap.String("project_name", project.Name))

	if trainImages != "" {
		if err := uploadTrainingImages(cmd, client, jobID); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "Training ...")
	handle, status, err := trainer.Submit(ctx, client, projectID)
	if err != nil {
		return generateExitError("Failed to start training", err)
	}
	observability.CLILogger.Info("Training started",
		zap.String("job_id", jobID),
		zap.String("iteration_id", handle.IterationID),
		zap.String("status", string(status)))

	interval := trainInterval
	if interval <= 0 {
		interval = cfg.Watch.Interval
	}
	watcher := &trainer.Watcher{
		Interval: interval,
		Progress: func(st trainer.Status) {
			fmt.Fprintf(out, "%s ...\n", st)
		},
	}

	final, err := watcher.Watch(ctx, &trainer.IterationPoller{Client: client}, handle)
	if err != nil {
		if ctx.Err() != nil {
			observability.CLILogger.Warn("Watch cancelled",
				zap.String("job_id", jobID),
				zap.String("iteration_id", handle.IterationID))
			return exitError(foundry.ExitSignalInt, "Training watch cancelled", err)
		}
		return generateExitError("Training watch failed", err)
	}

	if !trainer.Succeeded(final) {
		observability.CLILogger.Error("Training did not complete",
			zap.String("job_id", jobID),
			zap.String("iteration_id", handle.IterationID),
			zap.String("status", string(final)))
		return exitError(foundry.ExitExternalServiceUnavailable, "Training failed",
			fmt.Errorf("iteration %s ended with status %s", handle.IterationID, final))
	}

	fmt.Fprintln(out, "Model trained!")
	return nil
}

func uploadTrainingImages(cmd *cobra.Command, client trainer.TrainingAPI, jobID string) error {
	out := cmd.OutOrStdout()

	uploader, err := trainer.NewUploader(client, trainer.UploadConfig{
		ProjectID: cfg.Training.ProjectID,
		RateLimit: trainRate,
	})
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid upload configuration", err)
	}
	uploader.Progress = func(msg string) {
		fmt.Fprintf(out, "Uploading images for %s\n", msg)
	}

	summary, err := uploader.UploadFolder(cmd.Context(), trainImages)
	if err != nil {
		return generateExitError("Image upload failed", err)
	}

	observability.CLILogger.Info("Uploaded training images",
		zap.String("job_id", jobID),
		zap.Int("tags", summary.TagsSeen),
		zap.Int("images", summary.ImagesUploaded),
		zap.Strings("skipped_tags", summary.Skipped))
	fmt.Fprintf(out, "Uploaded %d images across %d tags\n", summary.ImagesUploaded, summary.TagsSeen)
	return nil
}
