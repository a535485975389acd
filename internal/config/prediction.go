package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/riskibarqy/budget-gm/internal/domain/prediction"
)

const predictionEnvPrefix = "PREDICTION_"

// LoadPredictionModel layers the built-in coefficient table, an optional YAML
// file and PREDICTION_* environment overrides, lowest precedence first.
// Nested keys use a double underscore: PREDICTION_WEIGHTS__POINTS=0.6.
func LoadPredictionModel(path string) (prediction.Model, error) {
	k := koanf.New(".")

	if strings.TrimSpace(path) != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return prediction.Model{}, fmt.Errorf("load prediction model file %q: %w", path, err)
		}
	}

	envProvider := env.Provider(predictionEnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, predictionEnvPrefix))
		if key == "model_file" {
			return ""
		}
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return prediction.Model{}, fmt.Errorf("load prediction model env: %w", err)
	}

	model := prediction.DefaultModel()
	if k.Exists("optimal_patterns") {
		model.OptimalPatterns = nil
	}
	if err := k.UnmarshalWithConf("", &model, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return prediction.Model{}, fmt.Errorf("decode prediction model: %w", err)
	}

	if err := model.Validate(); err != nil {
		return prediction.Model{}, err
	}
	return model, nil
}
