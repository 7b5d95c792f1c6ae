package customvision

// Project is a Custom Vision project.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Tag is a label defined on a project. Images are associated with tags by
// tag ID, not name.
type Tag struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	ImageCount  int    `json:"imageCount,omitempty"`
	Description string `json:"description,omitempty"`
}

// Iteration is one training run of a project. Status is a provider-defined
// string ("Training", "Validating", "Completed", "Failed", ...); the set is
// open-ended and new values may appear without notice.
type Iteration struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status"`
}

// Region is a tagged bounding box within a training image. Coordinates are
// normalized to [0,1] relative to the image dimensions.
type Region struct {
	TagID  string  `json:"tagId"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ImageFileCreateEntry is a single image in a batch upload. Contents carries
// the raw image bytes; encoding/json base64-encodes []byte, which is the wire
// format the service expects.
type ImageFileCreateEntry struct {
	Name     string   `json:"name"`
	Contents []byte   `json:"contents"`
	Regions  []Region `json:"regions,omitempty"`
	TagIDs   []string `json:"tagIds,omitempty"`
}

// ImageFileCreateBatch is the payload for a batch image upload.
type ImageFileCreateBatch struct {
	Images []ImageFileCreateEntry `json:"images"`
}

// ImageCreateStatus reports the outcome of one image within a batch upload.
type ImageCreateStatus struct {
	SourceURL string `json:"sourceUrl,omitempty"`
	Status    string `json:"status"`
}

// ImageCreateSummary is the service response to an image upload.
type ImageCreateSummary struct {
	IsBatchSuccessful bool                `json:"isBatchSuccessful"`
	Images            []ImageCreateStatus `json:"images,omitempty"`
}

// BoundingBox locates a predicted object. Coordinates are normalized to
// [0,1]; multiply by the pixel dimensions of the source image to get a
// pixel-space rectangle.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Prediction is a single predicted label, with an optional bounding box for
// object detection models.
type Prediction struct {
	Probability float64      `json:"probability"`
	TagName     string       `json:"tagName"`
	BoundingBox *BoundingBox `json:"boundingBox,omitempty"`
}

// ImagePrediction is the service response to a classify or detect call.
type ImagePrediction struct {
	ID          string       `json:"id,omitempty"`
	Project     string       `json:"project,omitempty"`
	Iteration   string       `json:"iteration,omitempty"`
	Predictions []Prediction `json:"predictions"`
}
