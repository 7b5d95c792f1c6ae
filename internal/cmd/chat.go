package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orchardai/visionlab/internal/observability"
	"github.com/orchardai/visionlab/pkg/vision/openai"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask a vision-enabled model about an image",
	Long: `Send an image and a question to a vision-enabled chat deployment.

The image is inlined as a base64 data URL, so it never needs to be hosted
anywhere. With --prompt a single question is asked; without it an
interactive loop reads questions until 'quit'.

Example:
  visionlab chat --image images/orange.jpg --prompt "What fruit is this?"
  visionlab chat --image mystery.png`,
	RunE: runChat,
}

var (
	chatImage  string
	chatPrompt string
	chatSystem string
)

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatImage, "image", "i", "", "Image file to discuss (required)")
	chatCmd.Flags().StringVarP(&chatPrompt, "prompt", "p", "", "Ask one question and exit")
	chatCmd.Flags().StringVar(&chatSystem, "system", "You are a helpful assistant.", "System prompt")

	_ = chatCmd.MarkFlagRequired("image")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	client, err := newOpenAIClient()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(chatImage)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Cannot read image", err)
	}
	imageURL := openai.DataURL(imageMIMEType(chatImage), data)

	observability.CLILogger.Debug("Loaded image for chat",
		zap.String("path", chatImage),
		zap.Int("bytes", len(data)))

	ask := func(question string) error {
		reply, err := client.ChatCompletion(ctx, cfg.OpenAI.Deployment, []openai.Message{
			openai.SystemMessage(chatSystem),
			openai.UserMessage(
				openai.TextPart(question),
				openai.ImagePart(imageURL),
			),
		})
		if err != nil {
			return generateExitError("Chat completion failed", err)
		}
		fmt.Fprintln(out, reply)
		return nil
	}

	if chatPrompt != "" {
		return ask(chatPrompt)
	}

	fmt.Fprintln(out, "Enter a question about the image (or 'quit' to exit):")
	return promptLoop("> ", ask)
}

// imageMIMEType guesses a MIME type from the file extension, defaulting to
// JPEG, which the chat API accepts for any common photo.
func imageMIMEType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "image/jpeg"
}
