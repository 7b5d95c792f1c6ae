// Package customvision implements clients for the Custom Vision training and
// prediction REST APIs.
//
// Only the operations the visionlab commands use are implemented: project and
// tag lookup, image upload (single and batch with regions), training, and
// iteration status queries on the training side; classify and detect on the
// prediction side.
package customvision

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/orchardai/visionlab/pkg/vision"
)

const trainingBasePath = "/customvision/v3.3/training"

// TrainingKeyHeader is the header the training API reads the API key from.
const TrainingKeyHeader = "Training-key"

// TrainingClient talks to the Custom Vision training API.
type TrainingClient struct {
	client *vision.Client
}

// NewTrainingClient creates a training client for the given endpoint and key.
func NewTrainingClient(endpoint, key string, opts ...vision.Option) (*TrainingClient, error) {
	c, err := vision.NewClient("customvision-training", endpoint, vision.KeyCredential(TrainingKeyHeader, key), opts...)
	if err != nil {
		return nil, err
	}
	return &TrainingClient{client: c}, nil
}

// GetProject fetches a project by ID.
func (tc *TrainingClient) GetProject(ctx context.Context, projectID string) (*Project, error) {
	if err := requireID("project ID", projectID); err != nil {
		return nil, err
	}
	var p Project
	path := fmt.Sprintf("%s/projects/%s", trainingBasePath, url.PathEscape(projectID))
	if err := tc.client.GetJSON(ctx, "GetProject", path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetTags lists the tags defined on a project.
func (tc *TrainingClient) GetTags(ctx context.Context, projectID string) ([]Tag, error) {
	if err := requireID("project ID", projectID); err != nil {
		return nil, err
	}
	var tags []Tag
	path := fmt.Sprintf("%s/projects/%s/tags", trainingBasePath, url.PathEscape(projectID))
	if err := tc.client.GetJSON(ctx, "GetTags", path, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateImage uploads a single image and associates it with the given tags.
func (tc *TrainingClient) CreateImage(ctx context.Context, projectID string, imageData []byte, tagIDs []string) (*ImageCreateSummary, error) {
	if err := requireID("project ID", projectID); err != nil {
		return nil, err
	}
	if len(imageData) == 0 {
		return nil, fmt.Errorf("customvision-training CreateImage: image data is empty")
	}

	query := url.Values{}
	if len(tagIDs) > 0 {
		query.Set("tagIds", strings.Join(tagIDs, ","))
	}

	var sum ImageCreateSummary
	path := fmt.Sprintf("%s/projects/%s/images", trainingBasePath, url.PathEscape(projectID))
	if err := tc.client.PostBinary(ctx, "CreateImage", path, query, imageData, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

// CreateImagesFromFiles uploads a batch of images, each with its tagged
// regions. The batch may partially succeed; callers must check
// IsBatchSuccessful and the per-image statuses.
func (tc *TrainingClient) CreateImagesFromFiles(ctx context.Context, projectID string, batch ImageFileCreateBatch) (*ImageCreateSummary, error) {
	if err := requireID("project ID", projectID); err != nil {
		return nil, err
	}
	if len(batch.Images) == 0 {
		return nil, fmt.Errorf("customvision-training CreateImagesFromFiles: batch is empty")
	}

	var sum ImageCreateSummary
	path := fmt.Sprintf("%s/projects/%s/images/files", trainingBasePath, url.PathEscape(projectID))
	if err := tc.client.PostJSON(ctx, "CreateImagesFromFiles", path, nil, batch, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

// TrainProject starts a new training iteration and returns its handle with
// the initial status.
func (tc *TrainingClient) TrainProject(ctx context.Context, projectID string) (*Iteration, error) {
	if err := requireID("project ID", projectID); err != nil {
		return nil, err
	}
	var it Iteration
	path := fmt.Sprintf("%s/projects/%s/train", trainingBasePath, url.PathEscape(projectID))
	if err := tc.client.PostJSON(ctx, "TrainProject", path, nil, nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// GetIteration fetches the current state of a training iteration.
func (tc *TrainingClient) GetIteration(ctx context.Context, projectID, iterationID string) (*Iteration, error) {
	if err := requireID("project ID", projectID); err != nil {
		return nil, err
	}
	if err := requireID("iteration ID", iterationID); err != nil {
		return nil, err
	}
	var it Iteration
	path := fmt.Sprintf("%s/projects/%s/iterations/%s", trainingBasePath, url.PathEscape(projectID), url.PathEscape(iterationID))
	if err := tc.client.GetJSON(ctx, "GetIteration", path, nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func requireID(what, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("customvision: %s is required", what)
	}
	return nil
}
