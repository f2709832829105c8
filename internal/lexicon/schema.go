package lexicon

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"

	"veracity/internal/errors"
)

// overrideSchema describes a lexicon override file. Keys are lowercase because
// viper folds keys to lowercase when reading the file.
const overrideSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "buzzwords":   {"$ref": "#/definitions/terms"},
    "adjectives":  {"$ref": "#/definitions/terms"},
    "transitions": {"$ref": "#/definitions/terms"},
    "weights": {
      "type": "object",
      "additionalProperties": false,
      "required": ["repetitive_structures", "perfect_grammar", "buzzword_density", "sentence_uniformity", "transition_overuse"],
      "properties": {
        "repetitive_structures": {"$ref": "#/definitions/weight"},
        "perfect_grammar":       {"$ref": "#/definitions/weight"},
        "buzzword_density":      {"$ref": "#/definitions/weight"},
        "sentence_uniformity":   {"$ref": "#/definitions/weight"},
        "transition_overuse":    {"$ref": "#/definitions/weight"}
      }
    },
    "thresholds": {
      "type": "object",
      "additionalProperties": false,
      "required": ["moderate", "high"],
      "properties": {
        "moderate": {"type": "number", "minimum": 0, "maximum": 100},
        "high":     {"type": "number", "minimum": 0, "maximum": 100}
      }
    }
  },
  "definitions": {
    "terms":  {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
    "weight": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`

type overrideFile struct {
	Buzzwords   []string    `mapstructure:"buzzwords"`
	Adjectives  []string    `mapstructure:"adjectives"`
	Transitions []string    `mapstructure:"transitions"`
	Weights     *Weights    `mapstructure:"weights"`
	Thresholds  *Thresholds `mapstructure:"thresholds"`
}

// Load returns the built-in lexicon when path is empty. Otherwise it reads a
// JSON or YAML override file, validates it against the override schema and
// replaces every table the file provides. Any problem is an InvalidConfiguration error.
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewInvalidConfigurationError("failed to read lexicon file "+path, err)
	}

	if err := validateOverride(v.AllSettings()); err != nil {
		return nil, errors.NewInvalidConfigurationError("lexicon file "+path+" is malformed", err)
	}

	var file overrideFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, errors.NewInvalidConfigurationError("failed to decode lexicon file "+path, err)
	}

	buzzwords, adjectives, transitions := defaultBuzzwords, defaultAdjectives, defaultTransitions
	weights, thresholds := DefaultWeights, DefaultThresholds
	if len(file.Buzzwords) > 0 {
		buzzwords = file.Buzzwords
	}
	if len(file.Adjectives) > 0 {
		adjectives = file.Adjectives
	}
	if len(file.Transitions) > 0 {
		transitions = file.Transitions
	}
	if file.Weights != nil {
		weights = *file.Weights
	}
	if file.Thresholds != nil {
		thresholds = *file.Thresholds
	}

	lex, err := build(buzzwords, adjectives, transitions, weights, thresholds)
	if err != nil {
		return nil, fmt.Errorf("lexicon file %s: %w", path, err)
	}
	return lex, nil
}

func validateOverride(settings map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(overrideSchema),
		gojsonschema.NewGoLoader(settings),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed during load: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, field+": "+desc.Description())
	}
	return fmt.Errorf("%s", strings.Join(problems, "; "))
}
