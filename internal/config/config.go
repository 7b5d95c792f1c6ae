// Package config loads visionlab configuration from environment variables
// and an optional config file.
//
// Every credential and endpoint the commands need comes from here; no
// command reads the environment directly. The original lab variable names
// (TrainingEndpoint, PredictionKey, AI_SERVICE_ENDPOINT, ...) are honored
// alongside the VISIONLAB_* forms.
package config

import (
	"fmt"
	"time"
)

// Config is the full visionlab configuration tree.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Training   TrainingConfig   `mapstructure:"training"`
	Prediction PredictionConfig `mapstructure:"prediction"`
	Vision     VisionConfig     `mapstructure:"vision"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Store      StoreConfig      `mapstructure:"store"`
	Watch      WatchConfig      `mapstructure:"watch"`
}

// LoggingConfig controls CLI log output.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// TrainingConfig locates the Custom Vision training resource.
type TrainingConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Key       string `mapstructure:"key"`
	ProjectID string `mapstructure:"project_id"`
}

// Validate checks the fields required for training operations.
func (c *TrainingConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("training endpoint is required (TrainingEndpoint or VISIONLAB_TRAINING_ENDPOINT)")
	}
	if c.Key == "" {
		return fmt.Errorf("training key is required (TrainingKey or VISIONLAB_TRAINING_KEY)")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("project ID is required (ProjectID or VISIONLAB_TRAINING_PROJECT_ID)")
	}
	return nil
}

// PredictionConfig locates a published Custom Vision model.
type PredictionConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Key       string `mapstructure:"key"`
	ProjectID string `mapstructure:"project_id"`
	ModelName string `mapstructure:"model_name"`
}

// Validate checks the fields required for prediction operations.
func (c *PredictionConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("prediction endpoint is required (PredictionEndpoint or VISIONLAB_PREDICTION_ENDPOINT)")
	}
	if c.Key == "" {
		return fmt.Errorf("prediction key is required (PredictionKey or VISIONLAB_PREDICTION_KEY)")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("project ID is required (ProjectID or VISIONLAB_PREDICTION_PROJECT_ID)")
	}
	if c.ModelName == "" {
		return fmt.Errorf("published model name is required (ModelName or VISIONLAB_PREDICTION_MODEL_NAME)")
	}
	return nil
}

// VisionConfig locates the AI services resource used for face detection and
// OCR.
type VisionConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Key      string `mapstructure:"key"`
}

// Validate checks the fields required for face and OCR operations.
func (c *VisionConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("AI service endpoint is required (AI_SERVICE_ENDPOINT or VISIONLAB_VISION_ENDPOINT)")
	}
	if c.Key == "" {
		return fmt.Errorf("AI service key is required (AI_SERVICE_KEY or VISIONLAB_VISION_KEY)")
	}
	return nil
}

// OpenAIConfig locates an Azure OpenAI resource and deployment.
//
// Either Key or Token must be set; Token is a pre-minted bearer token for
// resources that disable key auth.
type OpenAIConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	Key        string `mapstructure:"key"`
	Token      string `mapstructure:"token"`
	Deployment string `mapstructure:"deployment"`
	APIVersion string `mapstructure:"api_version"`
}

// Validate checks the fields required for generation and chat operations.
func (c *OpenAIConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("OpenAI endpoint is required (ENDPOINT, PROJECT_CONNECTION or VISIONLAB_OPENAI_ENDPOINT)")
	}
	if c.Deployment == "" {
		return fmt.Errorf("model deployment name is required (MODEL_DEPLOYMENT or VISIONLAB_OPENAI_DEPLOYMENT)")
	}
	if c.Key == "" && c.Token == "" {
		return fmt.Errorf("an API key or bearer token is required (VISIONLAB_OPENAI_KEY or VISIONLAB_OPENAI_TOKEN)")
	}
	return nil
}

// StoreConfig selects where generated images are written.
type StoreConfig struct {
	Destination string `mapstructure:"destination"`
}

// WatchConfig tunes the training watch loop.
type WatchConfig struct {
	// Interval is the delay between status polls.
	Interval time.Duration `mapstructure:"interval"`
}
