package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchardai/visionlab/pkg/vision/customvision"
	"github.com/orchardai/visionlab/test/visiontest"
)

func TestClassifyPrintsConfidentPredictions(t *testing.T) {
	srv := visiontest.New(t)
	srv.Predictions = []customvision.Prediction{
		{Probability: 0.97, TagName: "apple"},
		{Probability: 0.02, TagName: "banana"},
		{Probability: 0.01, TagName: "orange"},
	}
	setPredictionEnv(t, srv)

	dir := t.TempDir()
	img := filepath.Join(dir, "fruit1.png")
	writeTestPNG(t, img, 8, 8)

	out, err := executeCommand(t, "classify", img)
	require.NoError(t, err)

	assert.Contains(t, out, "fruit1.png : apple (97%)")
	assert.NotContains(t, out, "banana", "predictions at or below 50% are dropped")
}

func TestClassifyDirectory(t *testing.T) {
	srv := visiontest.New(t)
	srv.Predictions = []customvision.Prediction{
		{Probability: 0.81, TagName: "apple"},
	}
	setPredictionEnv(t, srv)

	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"), 8, 8)
	writeTestPNG(t, filepath.Join(dir, "b.png"), 8, 8)

	out, err := executeCommand(t, "classify", "--dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "a.png : apple (81%)")
	assert.Contains(t, out, "b.png : apple (81%)")
}

func TestClassifyEmptyDirectory(t *testing.T) {
	srv := visiontest.New(t)
	setPredictionEnv(t, srv)

	_, err := executeCommand(t, "classify", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No images to classify")
}

func TestClassifyMissingConfig(t *testing.T) {
	_, err := executeCommand(t, "classify", "some.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing prediction settings")
}
