package cmd

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orchardai/visionlab/test/visiontest"
)

// executeCommand runs the CLI with the given args and captures its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	rootCmd.SetContext(context.Background())

	err := rootCmd.Execute()
	rootCmd.SetArgs(nil)
	return buf.String(), err
}

// setTrainingEnv points the training config at the fake service.
func setTrainingEnv(t *testing.T, srv *visiontest.Server) {
	t.Helper()
	t.Setenv("TrainingEndpoint", srv.URL())
	t.Setenv("TrainingKey", visiontest.TrainingKey)
	t.Setenv("ProjectID", "proj-1")
}

// setPredictionEnv points the prediction config at the fake service.
func setPredictionEnv(t *testing.T, srv *visiontest.Server) {
	t.Helper()
	t.Setenv("PredictionEndpoint", srv.URL())
	t.Setenv("PredictionKey", visiontest.PredictionKey)
	t.Setenv("ProjectID", "proj-1")
	t.Setenv("ModelName", "fruit-model")
}

// setVisionEnv points the AI services config at the fake service.
func setVisionEnv(t *testing.T, srv *visiontest.Server) {
	t.Helper()
	t.Setenv("AI_SERVICE_ENDPOINT", srv.URL())
	t.Setenv("AI_SERVICE_KEY", visiontest.SubscriptionKey)
}

// setOpenAIEnv points the OpenAI config at the fake service.
func setOpenAIEnv(t *testing.T, srv *visiontest.Server) {
	t.Helper()
	t.Setenv("ENDPOINT", srv.URL())
	t.Setenv("OPENAI_API_KEY", visiontest.OpenAIKey)
	t.Setenv("MODEL_DEPLOYMENT", "test-deployment")
}

// writeTestPNG writes a small decodable image for annotate-based commands.
func writeTestPNG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()
	require.NoError(t, png.Encode(f, img))
}
