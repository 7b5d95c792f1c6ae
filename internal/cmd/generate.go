package cmd

import (
	"context"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orchardai/visionlab/internal/observability"
	"github.com/orchardai/visionlab/pkg/imagestore"
	"github.com/orchardai/visionlab/pkg/vision"
	"github.com/orchardai/visionlab/pkg/vision/openai"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate images from text prompts",
	Long: `Generate images with an OpenAI image deployment.

With --prompt a single image is generated; without it an interactive loop
reads prompts until 'quit'. Each image is downloaded and written to the
store destination (a local folder by default, or an s3:// bucket).

Example:
  visionlab generate --prompt "a robot eating spaghetti"
  visionlab generate --store s3://team-bucket/renders
  visionlab generate`,
	RunE: runGenerate,
}

var (
	generatePrompt string
	generateStore  string
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generatePrompt, "prompt", "p", "", "Generate one image for this prompt and exit")
	generateCmd.Flags().StringVar(&generateStore, "store", "", "Override store destination (dir, file://dir, s3://bucket/prefix)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	client, err := newOpenAIClient()
	if err != nil {
		return err
	}

	destination := cfg.Store.Destination
	if generateStore != "" {
		destination = generateStore
	}
	store, err := openStore(ctx, destination)
	if err != nil {
		observability.CLILogger.Error("Failed to open image store",
			zap.String("destination", destination),
			zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid store destination", err)
	}

	imageNum := 0
	generateOne := func(prompt string) error {
		imageNum++
		location, err := generateImage(ctx, client, store, prompt, imageNum)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved image to %s\n", location)
		return nil
	}

	if generatePrompt != "" {
		return generateOne(generatePrompt)
	}

	fmt.Fprintln(out, "Enter a prompt to request an image (or 'quit' to exit):")
	return promptLoop("> ", generateOne)
}

// generateImage renders one image, downloads it from its short-lived URL, and
// writes it to the store as image_<n>.png.
func generateImage(ctx context.Context, client *openai.Client, store imagestore.Store, prompt string, n int) (string, error) {
	observability.CLILogger.Debug("Requesting image",
		zap.String("deployment", cfg.OpenAI.Deployment),
		zap.String("prompt", prompt))

	url, err := client.GenerateImage(ctx, cfg.OpenAI.Deployment, prompt)
	if err != nil {
		return "", generateExitError("Image generation failed", err)
	}

	data, err := vision.FetchURL(ctx, url)
	if err != nil {
		return "", exitError(foundry.ExitExternalServiceUnavailable, "Failed to download generated image", err)
	}

	name := fmt.Sprintf("image_%d.png", n)
	location, err := store.Put(ctx, name, data)
	if err != nil {
		return "", exitError(foundry.ExitFileWriteError, "Failed to store image", err)
	}
	return location, nil
}

func generateExitError(msg string, err error) error {
	if vision.IsInvalidCredentials(err) {
		return exitError(foundry.ExitInvalidArgument, msg, err)
	}
	return exitError(foundry.ExitExternalServiceUnavailable, msg, err)
}
