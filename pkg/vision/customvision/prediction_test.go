package customvision_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchardai/visionlab/pkg/vision"
	"github.com/orchardai/visionlab/pkg/vision/customvision"
	"github.com/orchardai/visionlab/test/visiontest"
)

func newPredictionClient(t *testing.T, srv *visiontest.Server) *customvision.PredictionClient {
	t.Helper()
	pc, err := customvision.NewPredictionClient(srv.URL(), visiontest.PredictionKey)
	require.NoError(t, err)
	return pc
}

func TestClassifyImage(t *testing.T) {
	srv := visiontest.New(t)
	srv.Predictions = []customvision.Prediction{
		{Probability: 0.98, TagName: "apple"},
		{Probability: 0.02, TagName: "banana"},
	}

	pc := newPredictionClient(t, srv)
	result, err := pc.ClassifyImage(context.Background(), "proj-1", "fruit-classifier", []byte("jpeg"))
	require.NoError(t, err)

	assert.Equal(t, "fruit-classifier", result.Iteration)
	require.Len(t, result.Predictions, 2)
	assert.Equal(t, "apple", result.Predictions[0].TagName)
	assert.InDelta(t, 0.98, result.Predictions[0].Probability, 1e-9)
	assert.Nil(t, result.Predictions[0].BoundingBox, "classification carries no boxes")
}

func TestDetectImage(t *testing.T) {
	srv := visiontest.New(t)
	srv.Predictions = []customvision.Prediction{
		{
			Probability: 0.91,
			TagName:     "orange",
			BoundingBox: &customvision.BoundingBox{Left: 0.25, Top: 0.1, Width: 0.5, Height: 0.4},
		},
	}

	pc := newPredictionClient(t, srv)
	result, err := pc.DetectImage(context.Background(), "proj-1", "fruit-detector", []byte("jpeg"))
	require.NoError(t, err)

	require.Len(t, result.Predictions, 1)
	box := result.Predictions[0].BoundingBox
	require.NotNil(t, box)
	assert.Equal(t, 0.25, box.Left)
	assert.Equal(t, 0.4, box.Height)
}

func TestPredictValidation(t *testing.T) {
	srv := visiontest.New(t)
	pc := newPredictionClient(t, srv)
	ctx := context.Background()

	_, err := pc.ClassifyImage(ctx, "", "model", []byte("x"))
	assert.ErrorContains(t, err, "project ID is required")

	_, err = pc.ClassifyImage(ctx, "proj-1", "", []byte("x"))
	assert.ErrorContains(t, err, "published model name is required")

	_, err = pc.DetectImage(ctx, "proj-1", "model", nil)
	assert.ErrorContains(t, err, "image data is empty")
}

func TestPredictionClientBadKey(t *testing.T) {
	srv := visiontest.New(t)
	pc, err := customvision.NewPredictionClient(srv.URL(), "wrong-key")
	require.NoError(t, err)

	_, err = pc.ClassifyImage(context.Background(), "proj-1", "model", []byte("x"))
	require.Error(t, err)
	assert.True(t, vision.IsInvalidCredentials(err))
}
