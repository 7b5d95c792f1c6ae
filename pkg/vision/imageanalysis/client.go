// Package imageanalysis implements a client for the Image Analysis REST API,
// currently limited to the Read (OCR) visual feature.
package imageanalysis

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/orchardai/visionlab/pkg/vision"
)

const analyzePath = "/computervision/imageanalysis:analyze"

// APIVersion is the image analysis API version the client targets.
const APIVersion = "2023-10-01"

// SubscriptionKeyHeader is the header the API reads the key from.
const SubscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// Visual features selectable on an analyze call.
const (
	FeatureRead    = "read"
	FeatureCaption = "caption"
	FeatureTags    = "tags"
)

// Point is a pixel coordinate within the analyzed image.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Word is a single recognized word with its bounding polygon and the
// service's confidence in the recognition (0..1).
type Word struct {
	Text            string  `json:"text"`
	BoundingPolygon []Point `json:"boundingPolygon"`
	Confidence      float64 `json:"confidence"`
}

// Line is a recognized line of text.
type Line struct {
	Text            string  `json:"text"`
	BoundingPolygon []Point `json:"boundingPolygon"`
	Words           []Word  `json:"words"`
}

// Block groups recognized lines. The service currently returns a single
// block for most images, but the schema allows several.
type Block struct {
	Lines []Line `json:"lines"`
}

// ReadResult is the OCR portion of an analyze response.
type ReadResult struct {
	Blocks []Block `json:"blocks"`
}

// Lines flattens all blocks into a single line slice.
func (r *ReadResult) Lines() []Line {
	var lines []Line
	for _, b := range r.Blocks {
		lines = append(lines, b.Lines...)
	}
	return lines
}

// Metadata describes the analyzed image.
type Metadata struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AnalyzeResult is the response to an analyze call. Only the requested
// feature fields are populated.
type AnalyzeResult struct {
	ModelVersion string      `json:"modelVersion,omitempty"`
	Metadata     Metadata    `json:"metadata"`
	Read         *ReadResult `json:"readResult,omitempty"`
}

// Client talks to the Image Analysis API.
type Client struct {
	client *vision.Client
}

// NewClient creates an image analysis client for the given endpoint and key.
func NewClient(endpoint, key string, opts ...vision.Option) (*Client, error) {
	c, err := vision.NewClient("imageanalysis", endpoint, vision.KeyCredential(SubscriptionKeyHeader, key), opts...)
	if err != nil {
		return nil, err
	}
	return &Client{client: c}, nil
}

// Analyze runs the given visual features over the image bytes.
func (c *Client) Analyze(ctx context.Context, imageData []byte, features ...string) (*AnalyzeResult, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("imageanalysis Analyze: image data is empty")
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("imageanalysis Analyze: at least one visual feature is required")
	}

	query := url.Values{}
	query.Set("api-version", APIVersion)
	query.Set("features", strings.Join(features, ","))

	var result AnalyzeResult
	if err := c.client.PostBinary(ctx, "Analyze", analyzePath, query, imageData, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
