// Package face implements a client for the Face detection REST API.
package face

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/orchardai/visionlab/pkg/vision"
)

const detectPath = "/face/v1.0/detect"

// SubscriptionKeyHeader is the header the face API reads the API key from.
const SubscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// Detection model identifiers.
const (
	DetectionModel01 = "detection_01"
	DetectionModel03 = "detection_03"
)

// Recognition model identifiers.
const (
	RecognitionModel01 = "recognition_01"
	RecognitionModel04 = "recognition_04"
)

// Face attributes that can be requested with DetectionModel01.
const (
	AttributeHeadPose    = "headPose"
	AttributeOcclusion   = "occlusion"
	AttributeAccessories = "accessories"
	AttributeGlasses     = "glasses"
	AttributeBlur        = "blur"
	AttributeExposure    = "exposure"
	AttributeNoise       = "noise"
)

// Rectangle is the pixel-space bounding box of a detected face.
//
// Unlike Custom Vision prediction boxes, face rectangles are already in
// pixels; no normalization mapping is needed before drawing.
type Rectangle struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// HeadPose is the 3D orientation of a detected head, in degrees.
type HeadPose struct {
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
}

// Occlusion reports whether facial features are blocked.
type Occlusion struct {
	ForeheadOccluded bool `json:"foreheadOccluded"`
	EyeOccluded      bool `json:"eyeOccluded"`
	MouthOccluded    bool `json:"mouthOccluded"`
}

// Accessory is an item detected on or around a face.
type Accessory struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Attributes carries the requested per-face attribute set. Fields not
// requested come back nil.
type Attributes struct {
	HeadPose    *HeadPose   `json:"headPose,omitempty"`
	Occlusion   *Occlusion  `json:"occlusion,omitempty"`
	Accessories []Accessory `json:"accessories,omitempty"`
}

// DetectedFace is one face found in an image.
type DetectedFace struct {
	FaceID         string      `json:"faceId,omitempty"`
	FaceRectangle  Rectangle   `json:"faceRectangle"`
	FaceAttributes *Attributes `json:"faceAttributes,omitempty"`
}

// DetectOptions selects the models and attributes for a detect call.
type DetectOptions struct {
	// DetectionModel picks the detection algorithm. Default: detection_01.
	DetectionModel string

	// RecognitionModel picks the recognition algorithm. Default: recognition_01.
	RecognitionModel string

	// ReturnFaceID requests a transient face identifier for each face.
	ReturnFaceID bool

	// Attributes lists the facial attributes to analyze. Attribute analysis
	// costs extra processing; request only what is needed.
	Attributes []string
}

// Client talks to the Face API.
type Client struct {
	client *vision.Client
}

// NewClient creates a face client for the given endpoint and key.
func NewClient(endpoint, key string, opts ...vision.Option) (*Client, error) {
	c, err := vision.NewClient("face", endpoint, vision.KeyCredential(SubscriptionKeyHeader, key), opts...)
	if err != nil {
		return nil, err
	}
	return &Client{client: c}, nil
}

// Detect finds faces in the given image bytes and returns them with the
// requested attributes. An image with no faces yields an empty slice, not an
// error.
func (c *Client) Detect(ctx context.Context, imageData []byte, opts DetectOptions) ([]DetectedFace, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("face Detect: image data is empty")
	}

	detectionModel := opts.DetectionModel
	if detectionModel == "" {
		detectionModel = DetectionModel01
	}
	recognitionModel := opts.RecognitionModel
	if recognitionModel == "" {
		recognitionModel = RecognitionModel01
	}

	query := url.Values{}
	query.Set("detectionModel", detectionModel)
	query.Set("recognitionModel", recognitionModel)
	query.Set("returnFaceId", fmt.Sprintf("%t", opts.ReturnFaceID))
	if len(opts.Attributes) > 0 {
		query.Set("returnFaceAttributes", strings.Join(opts.Attributes, ","))
	}

	var faces []DetectedFace
	if err := c.client.PostBinary(ctx, "Detect", detectPath, query, imageData, &faces); err != nil {
		return nil, err
	}
	return faces, nil
}
