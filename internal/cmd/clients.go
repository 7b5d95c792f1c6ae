package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"

	"github.com/orchardai/visionlab/pkg/vision/customvision"
	"github.com/orchardai/visionlab/pkg/vision/face"
	"github.com/orchardai/visionlab/pkg/vision/imageanalysis"
	"github.com/orchardai/visionlab/pkg/vision/openai"
)

// Client constructors shared by the commands. Each validates its config
// section first so a missing credential fails with a message naming the
// variable to set, before any network traffic.

func newTrainingClient() (*customvision.TrainingClient, error) {
	if err := cfg.Training.Validate(); err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Missing training settings", err)
	}
	return customvision.NewTrainingClient(cfg.Training.Endpoint, cfg.Training.Key)
}

func newPredictionClient() (*customvision.PredictionClient, error) {
	if err := cfg.Prediction.Validate(); err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Missing prediction settings", err)
	}
	return customvision.NewPredictionClient(cfg.Prediction.Endpoint, cfg.Prediction.Key)
}

func newFaceClient() (*face.Client, error) {
	if err := cfg.Vision.Validate(); err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Missing AI service settings", err)
	}
	return face.NewClient(cfg.Vision.Endpoint, cfg.Vision.Key)
}

func newAnalysisClient() (*imageanalysis.Client, error) {
	if err := cfg.Vision.Validate(); err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Missing AI service settings", err)
	}
	return imageanalysis.NewClient(cfg.Vision.Endpoint, cfg.Vision.Key)
}

func newOpenAIClient() (*openai.Client, error) {
	if err := cfg.OpenAI.Validate(); err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Missing OpenAI settings", err)
	}
	if cfg.OpenAI.Key != "" {
		return openai.NewClient(cfg.OpenAI.Endpoint, cfg.OpenAI.Key, cfg.OpenAI.APIVersion)
	}
	return openai.NewClientWithToken(cfg.OpenAI.Endpoint, cfg.OpenAI.Token, cfg.OpenAI.APIVersion)
}
