package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchardai/visionlab/pkg/vision/customvision"
	"github.com/orchardai/visionlab/test/visiontest"
)

const testLabelSet = `{
  "files": [
    {
      "filename": "image11.png",
      "tags": [
        {"tag": "apple", "left": 0.1, "top": 0.2, "width": 0.3, "height": 0.4}
      ]
    }
  ]
}`

func TestUploadLabelSet(t *testing.T) {
	srv := visiontest.New(t)
	srv.Tags = []customvision.Tag{{ID: "t-apple", Name: "apple"}}
	setTrainingEnv(t, srv)

	dir := t.TempDir()
	labels := filepath.Join(dir, "tagged-images.json")
	require.NoError(t, os.WriteFile(labels, []byte(testLabelSet), 0o644))
	writeTestPNG(t, filepath.Join(dir, "image11.png"), 8, 8)

	out, err := executeCommand(t, "upload", "--labels", labels, "--images", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Uploaded 1 images")
	require.Len(t, srv.Batches, 1)
	batch := srv.Batches[0]
	require.Len(t, batch.Images, 1)
	assert.Equal(t, "image11.png", batch.Images[0].Name)
	require.Len(t, batch.Images[0].Regions, 1)
	assert.Equal(t, "t-apple", batch.Images[0].Regions[0].TagID)
	assert.Equal(t, 0.2, batch.Images[0].Regions[0].Top)
}

func TestUploadFailedBatch(t *testing.T) {
	srv := visiontest.New(t)
	srv.Tags = []customvision.Tag{{ID: "t-apple", Name: "apple"}}
	srv.BatchSummary = customvision.ImageCreateSummary{
		IsBatchSuccessful: false,
		Images: []customvision.ImageCreateStatus{
			{Status: "ErrorImageFormat"},
		},
	}
	setTrainingEnv(t, srv)

	dir := t.TempDir()
	labels := filepath.Join(dir, "tagged-images.json")
	require.NoError(t, os.WriteFile(labels, []byte(testLabelSet), 0o644))
	writeTestPNG(t, filepath.Join(dir, "image11.png"), 8, 8)

	out, err := executeCommand(t, "upload", "--labels", labels, "--images", dir)
	require.Error(t, err)
	assert.Contains(t, out, "Image batch upload failed.")
	assert.Contains(t, out, "Image status: ErrorImageFormat")
	assert.NotEqual(t, 0, ExitCode(err))
}

func TestUploadUnknownTag(t *testing.T) {
	srv := visiontest.New(t)
	srv.Tags = []customvision.Tag{{ID: "t-banana", Name: "banana"}}
	setTrainingEnv(t, srv)

	dir := t.TempDir()
	labels := filepath.Join(dir, "tagged-images.json")
	require.NoError(t, os.WriteFile(labels, []byte(testLabelSet), 0o644))
	writeTestPNG(t, filepath.Join(dir, "image11.png"), 8, 8)

	_, err := executeCommand(t, "upload", "--labels", labels, "--images", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tag "apple" is not defined`)
	assert.Empty(t, srv.Batches)
}

func TestUploadMissingLabelFile(t *testing.T) {
	srv := visiontest.New(t)
	setTrainingEnv(t, srv)

	_, err := executeCommand(t, "upload", "--labels", filepath.Join(t.TempDir(), "nope.json"), "--images", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot load label set")
}
