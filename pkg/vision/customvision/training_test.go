package customvision_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orchardai/visionlab/pkg/vision"
	"github.com/orchardai/visionlab/pkg/vision/customvision"
	"github.com/orchardai/visionlab/test/visiontest"
)

func newTrainingClient(t *testing.T, srv *visiontest.Server) *customvision.TrainingClient {
	t.Helper()
	tc, err := customvision.NewTrainingClient(srv.URL(), visiontest.TrainingKey)
	require.NoError(t, err)
	return tc
}

func TestGetProject(t *testing.T) {
	srv := visiontest.New(t)
	srv.Project = customvision.Project{ID: "proj-1", Name: "fruit"}

	tc := newTrainingClient(t, srv)
	p, err := tc.GetProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "proj-1", p.ID)
	assert.Equal(t, "fruit", p.Name)
}

func TestGetTags(t *testing.T) {
	srv := visiontest.New(t)
	srv.Tags = []customvision.Tag{
		{ID: "t1", Name: "apple"},
		{ID: "t2", Name: "banana"},
	}

	tc := newTrainingClient(t, srv)
	tags, err := tc.GetTags(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "apple", tags[0].Name)
	assert.Equal(t, "t2", tags[1].ID)
}

func TestCreateImage(t *testing.T) {
	srv := visiontest.New(t)
	tc := newTrainingClient(t, srv)

	sum, err := tc.CreateImage(context.Background(), "proj-1", []byte("jpeg-bytes"), []string{"t1", "t2"})
	require.NoError(t, err)
	assert.True(t, sum.IsBatchSuccessful)

	require.Len(t, srv.Uploads, 1)
	assert.Equal(t, "jpeg-bytes", string(srv.Uploads[0].Data))
	assert.Equal(t, "t1,t2", srv.Uploads[0].TagIDs)
}

func TestCreateImageEmptyData(t *testing.T) {
	srv := visiontest.New(t)
	tc := newTrainingClient(t, srv)

	_, err := tc.CreateImage(context.Background(), "proj-1", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image data is empty")
	assert.Empty(t, srv.Uploads)
}

func TestCreateImagesFromFiles(t *testing.T) {
	srv := visiontest.New(t)
	tc := newTrainingClient(t, srv)

	batch := customvision.ImageFileCreateBatch{
		Images: []customvision.ImageFileCreateEntry{
			{
				Name:     "image11.jpg",
				Contents: []byte("img-bytes"),
				Regions: []customvision.Region{
					{TagID: "t1", Left: 0.1, Top: 0.2, Width: 0.3, Height: 0.4},
				},
			},
		},
	}

	sum, err := tc.CreateImagesFromFiles(context.Background(), "proj-1", batch)
	require.NoError(t, err)
	assert.True(t, sum.IsBatchSuccessful)

	require.Len(t, srv.Batches, 1)
	got := srv.Batches[0]
	require.Len(t, got.Images, 1)
	assert.Equal(t, "image11.jpg", got.Images[0].Name)
	assert.Equal(t, "img-bytes", string(got.Images[0].Contents), "contents survive the base64 round trip")
	require.Len(t, got.Images[0].Regions, 1)
	assert.Equal(t, 0.2, got.Images[0].Regions[0].Top)
}

func TestCreateImagesFromFilesReportsFailures(t *testing.T) {
	srv := visiontest.New(t)
	srv.BatchSummary = customvision.ImageCreateSummary{
		IsBatchSuccessful: false,
		Images: []customvision.ImageCreateStatus{
			{Status: "OKDuplicate"},
		},
	}

	tc := newTrainingClient(t, srv)
	sum, err := tc.CreateImagesFromFiles(context.Background(), "proj-1", customvision.ImageFileCreateBatch{
		Images: []customvision.ImageFileCreateEntry{{Name: "x.jpg", Contents: []byte("b")}},
	})
	require.NoError(t, err, "a partially failed batch is not a transport error")
	assert.False(t, sum.IsBatchSuccessful)
	require.Len(t, sum.Images, 1)
	assert.Equal(t, "OKDuplicate", sum.Images[0].Status)
}

func TestTrainProject(t *testing.T) {
	srv := visiontest.New(t)
	srv.TrainIteration = customvision.Iteration{ID: "iter-9", Status: "Queued"}

	tc := newTrainingClient(t, srv)
	it, err := tc.TrainProject(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "iter-9", it.ID)
	assert.Equal(t, "Queued", it.Status)
	assert.Equal(t, 1, srv.TrainCalls)
}

func TestGetIterationSequence(t *testing.T) {
	srv := visiontest.New(t)
	srv.IterationStatuses = []string{"Training", "Completed"}

	tc := newTrainingClient(t, srv)
	ctx := context.Background()

	it, err := tc.GetIteration(ctx, "proj-1", "iter-9")
	require.NoError(t, err)
	assert.Equal(t, "Training", it.Status)
	assert.Equal(t, "iter-9", it.ID)

	it, err = tc.GetIteration(ctx, "proj-1", "iter-9")
	require.NoError(t, err)
	assert.Equal(t, "Completed", it.Status)

	// Exhausted sequences repeat the terminal entry.
	it, err = tc.GetIteration(ctx, "proj-1", "iter-9")
	require.NoError(t, err)
	assert.Equal(t, "Completed", it.Status)
}

func TestTrainingClientRequiresIDs(t *testing.T) {
	srv := visiontest.New(t)
	tc := newTrainingClient(t, srv)
	ctx := context.Background()

	_, err := tc.GetProject(ctx, " ")
	assert.ErrorContains(t, err, "project ID is required")

	_, err = tc.GetIteration(ctx, "proj-1", "")
	assert.ErrorContains(t, err, "iteration ID is required")
}

func TestTrainingClientBadKey(t *testing.T) {
	srv := visiontest.New(t)
	tc, err := customvision.NewTrainingClient(srv.URL(), "wrong-key")
	require.NoError(t, err)

	_, err = tc.GetProject(context.Background(), "proj-1")
	require.Error(t, err)
	assert.True(t, vision.IsInvalidCredentials(err))
}

func TestTrainingClientServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, vision.IsNotFound},
		{"throttled", http.StatusTooManyRequests, vision.IsThrottled},
		{"unavailable", http.StatusServiceUnavailable, vision.IsUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := visiontest.New(t)
			srv.FailStatus = tt.status

			tc := newTrainingClient(t, srv)
			_, err := tc.GetIteration(context.Background(), "proj-1", "iter-1")
			require.Error(t, err)
			assert.True(t, tt.check(err))
		})
	}
}
