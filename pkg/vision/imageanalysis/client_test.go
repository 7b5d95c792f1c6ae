package imageanalysis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchardai/visionlab/pkg/vision"
	"github.com/orchardai/visionlab/pkg/vision/imageanalysis"
	"github.com/orchardai/visionlab/test/visiontest"
)

func TestAnalyzeRead(t *testing.T) {
	srv := visiontest.New(t)
	srv.AnalyzeResult = imageanalysis.AnalyzeResult{
		Metadata: imageanalysis.Metadata{Width: 640, Height: 480},
		Read: &imageanalysis.ReadResult{
			Blocks: []imageanalysis.Block{
				{
					Lines: []imageanalysis.Line{
						{
							Text: "Nutrition Facts",
							BoundingPolygon: []imageanalysis.Point{
								{X: 10, Y: 10}, {X: 200, Y: 10}, {X: 200, Y: 40}, {X: 10, Y: 40},
							},
							Words: []imageanalysis.Word{
								{Text: "Nutrition", Confidence: 0.995},
								{Text: "Facts", Confidence: 0.981},
							},
						},
					},
				},
			},
		},
	}

	c, err := imageanalysis.NewClient(srv.URL(), visiontest.SubscriptionKey)
	require.NoError(t, err)

	result, err := c.Analyze(context.Background(), []byte("jpeg"), imageanalysis.FeatureRead)
	require.NoError(t, err)

	assert.Equal(t, 640, result.Metadata.Width)
	require.NotNil(t, result.Read)
	lines := result.Read.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Nutrition Facts", lines[0].Text)
	require.Len(t, lines[0].Words, 2)
	assert.InDelta(t, 0.995, lines[0].Words[0].Confidence, 1e-9)
	assert.Len(t, lines[0].BoundingPolygon, 4)
}

func TestAnalyzeQuery(t *testing.T) {
	srv := visiontest.New(t)
	c, err := imageanalysis.NewClient(srv.URL(), visiontest.SubscriptionKey)
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), []byte("jpeg"), imageanalysis.FeatureRead, imageanalysis.FeatureCaption)
	require.NoError(t, err)

	require.Len(t, srv.AnalyzeQueries, 1)
	q := srv.AnalyzeQueries[0]
	assert.Equal(t, imageanalysis.APIVersion, q.Get("api-version"))
	assert.Equal(t, "read,caption", q.Get("features"))
}

func TestReadResultLinesFlattensBlocks(t *testing.T) {
	r := imageanalysis.ReadResult{
		Blocks: []imageanalysis.Block{
			{Lines: []imageanalysis.Line{{Text: "one"}, {Text: "two"}}},
			{Lines: []imageanalysis.Line{{Text: "three"}}},
		},
	}
	lines := r.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "three", lines[2].Text)
}

func TestAnalyzeValidation(t *testing.T) {
	srv := visiontest.New(t)
	c, err := imageanalysis.NewClient(srv.URL(), visiontest.SubscriptionKey)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Analyze(ctx, nil, imageanalysis.FeatureRead)
	assert.ErrorContains(t, err, "image data is empty")

	_, err = c.Analyze(ctx, []byte("jpeg"))
	assert.ErrorContains(t, err, "at least one visual feature")
}

func TestAnalyzeBadKey(t *testing.T) {
	srv := visiontest.New(t)
	c, err := imageanalysis.NewClient(srv.URL(), "wrong-key")
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), []byte("jpeg"), imageanalysis.FeatureRead)
	require.Error(t, err)
	assert.True(t, vision.IsInvalidCredentials(err))
}
