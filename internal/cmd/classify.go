package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orchardai/visionlab/internal/observability"
)

// predictionThreshold filters out low-confidence predictions from command
// output. Matches the published model's notion of "probably this tag".
const predictionThreshold = 0.5

var classifyCmd = &cobra.Command{
	Use:   "classify [image ...]",
	Short: "Classify images with the published model",
	Long: `Classify one or more images with the published Custom Vision model
and print each tag predicted with more than 50% probability.

With no arguments, every image in the --dir folder is classified.

Example:
  visionlab classify images/fruit1.jpg images/fruit2.jpg
  visionlab classify --dir test-images`,
	RunE: runClassify,
}

var classifyDir string

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifyDir, "dir", "test-images", "Folder to classify when no files are given")
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	client, err := newPredictionClient()
	if err != nil {
		return err
	}

	files := args
	if len(files) == 0 {
		files, err = listImages(classifyDir)
		if err != nil {
			return exitError(foundry.ExitFileNotFound, "Cannot list test images", err)
		}
	}
	if len(files) == 0 {
		return exitError(foundry.ExitInvalidArgument, "No images to classify",
			fmt.Errorf("no image files found in %s", classifyDir))
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return exitError(foundry.ExitFileNotFound, "Cannot read image", err)
		}

		result, err := client.ClassifyImage(ctx, cfg.Prediction.ProjectID, cfg.Prediction.ModelName, data)
		if err != nil {
			return generateExitError("Classification failed", err)
		}

		observability.CLILogger.Debug("Classified image",
			zap.String("file", file),
			zap.Int("predictions", len(result.Predictions)))

		for _, p := range result.Predictions {
			if p.Probability > predictionThreshold {
				fmt.Fprintf(out, "%s : %s (%.0f%%)\n", filepath.Base(file), p.TagName, p.Probability*100)
			}
		}
	}
	return nil
}

// listImages returns the image files directly inside dir, sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png", ".gif", ".bmp":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
