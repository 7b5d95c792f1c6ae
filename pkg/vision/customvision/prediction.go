package customvision

import (
	"context"
	"fmt"
	"net/url"

	"github.com/orchardai/visionlab/pkg/vision"
)

const predictionBasePath = "/customvision/v3.0/prediction"

// PredictionKeyHeader is the header the prediction API reads the API key from.
const PredictionKeyHeader = "Prediction-key"

// PredictionClient talks to the Custom Vision prediction API using a
// published model iteration.
type PredictionClient struct {
	client *vision.Client
}

// NewPredictionClient creates a prediction client for the given endpoint and key.
func NewPredictionClient(endpoint, key string, opts ...vision.Option) (*PredictionClient, error) {
	c, err := vision.NewClient("customvision-prediction", endpoint, vision.KeyCredential(PredictionKeyHeader, key), opts...)
	if err != nil {
		return nil, err
	}
	return &PredictionClient{client: c}, nil
}

// ClassifyImage runs image classification against a published model.
func (pc *PredictionClient) ClassifyImage(ctx context.Context, projectID, publishedName string, imageData []byte) (*ImagePrediction, error) {
	return pc.predict(ctx, "ClassifyImage", "classify", projectID, publishedName, imageData)
}

// DetectImage runs object detection against a published model. Each returned
// prediction carries a normalized bounding box.
func (pc *PredictionClient) DetectImage(ctx context.Context, projectID, publishedName string, imageData []byte) (*ImagePrediction, error) {
	return pc.predict(ctx, "DetectImage", "detect", projectID, publishedName, imageData)
}

func (pc *PredictionClient) predict(ctx context.Context, op, kind, projectID, publishedName string, imageData []byte) (*ImagePrediction, error) {
	if err := requireID("project ID", projectID); err != nil {
		return nil, err
	}
	if err := requireID("published model name", publishedName); err != nil {
		return nil, err
	}
	if len(imageData) == 0 {
		return nil, fmt.Errorf("customvision-prediction %s: image data is empty", op)
	}

	var result ImagePrediction
	path := fmt.Sprintf("%s/%s/%s/iterations/%s/image",
		predictionBasePath, url.PathEscape(projectID), kind, url.PathEscape(publishedName))
	if err := pc.client.PostBinary(ctx, op, path, nil, imageData, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
