package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Load builds the configuration from defaults, an optional visionlab.yaml in
// the working directory, and environment variables. Later sources win.
//
// Optional overrides maps are merged last; they exist for tests and for
// flag-level overrides from the CLI.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("visionlab")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars alone are a complete
		// configuration. Anything else (malformed YAML) is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("VISIONLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	for _, o := range overrides {
		if err := v.MergeConfigMap(o); err != nil {
			return nil, fmt.Errorf("merge overrides: %w", err)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("openai.api_version", "2024-10-21")
	v.SetDefault("store.destination", "images")
	v.SetDefault("watch.interval", "5s")
}

// bindLegacyEnv honors the variable names the original lab scripts read from
// their .env files, so existing environments keep working unchanged.
func bindLegacyEnv(v *viper.Viper) {
	// Custom Vision training (train-classifier, add-tagged-images).
	_ = v.BindEnv("training.endpoint", "VISIONLAB_TRAINING_ENDPOINT", "TrainingEndpoint")
	_ = v.BindEnv("training.key", "VISIONLAB_TRAINING_KEY", "TrainingKey")
	_ = v.BindEnv("training.project_id", "VISIONLAB_TRAINING_PROJECT_ID", "ProjectID")

	// Custom Vision prediction (test-classifier, test-detector).
	_ = v.BindEnv("prediction.endpoint", "VISIONLAB_PREDICTION_ENDPOINT", "PredictionEndpoint")
	_ = v.BindEnv("prediction.key", "VISIONLAB_PREDICTION_KEY", "PredictionKey")
	_ = v.BindEnv("prediction.project_id", "VISIONLAB_PREDICTION_PROJECT_ID", "ProjectID")
	_ = v.BindEnv("prediction.model_name", "VISIONLAB_PREDICTION_MODEL_NAME", "ModelName")

	// AI services resource (faces, OCR).
	_ = v.BindEnv("vision.endpoint", "VISIONLAB_VISION_ENDPOINT", "AI_SERVICE_ENDPOINT")
	_ = v.BindEnv("vision.key", "VISIONLAB_VISION_KEY", "AI_SERVICE_KEY")

	// Azure OpenAI (generate, chat).
	_ = v.BindEnv("openai.endpoint", "VISIONLAB_OPENAI_ENDPOINT", "ENDPOINT", "PROJECT_CONNECTION")
	_ = v.BindEnv("openai.key", "VISIONLAB_OPENAI_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.token", "VISIONLAB_OPENAI_TOKEN")
	_ = v.BindEnv("openai.deployment", "VISIONLAB_OPENAI_DEPLOYMENT", "MODEL_DEPLOYMENT")
	_ = v.BindEnv("openai.api_version", "VISIONLAB_OPENAI_API_VERSION", "API_VERSION")
}
