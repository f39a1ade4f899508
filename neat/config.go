package neat

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// GenomeConfig holds parameters for the structure and mutation of CPPN networks.
type GenomeConfig struct {
	// --- Structural mutation ---
	FeedForward              bool    `ini:"feed_forward" yaml:"feed_forward"` // If true, recurrent connections are disallowed
	ConnAddProb              float64 `ini:"conn_add_prob" yaml:"conn_add_prob"`
	ConnDeleteProb           float64 `ini:"conn_delete_prob" yaml:"conn_delete_prob"`
	NodeAddProb              float64 `ini:"node_add_prob" yaml:"node_add_prob"`
	NodeDeleteProb           float64 `ini:"node_delete_prob" yaml:"node_delete_prob"`
	SingleStructuralMutation bool    `ini:"single_structural_mutation" yaml:"single_structural_mutation"`

	// --- Node Gene parameters ---
	BiasInitMean    float64 `ini:"bias_init_mean" yaml:"bias_init_mean"`
	BiasInitStdev   float64 `ini:"bias_init_stdev" yaml:"bias_init_stdev"`
	BiasInitType    string  `ini:"bias_init_type" yaml:"bias_init_type"`
	BiasReplaceRate float64 `ini:"bias_replace_rate" yaml:"bias_replace_rate"`
	BiasMutateRate  float64 `ini:"bias_mutate_rate" yaml:"bias_mutate_rate"`
	BiasMutatePower float64 `ini:"bias_mutate_power" yaml:"bias_mutate_power"`
	BiasMaxValue    float64 `ini:"bias_max_value" yaml:"bias_max_value"`
	BiasMinValue    float64 `ini:"bias_min_value" yaml:"bias_min_value"`

	ResponseInitMean    float64 `ini:"response_init_mean" yaml:"response_init_mean"`
	ResponseInitStdev   float64 `ini:"response_init_stdev" yaml:"response_init_stdev"`
	ResponseInitType    string  `ini:"response_init_type" yaml:"response_init_type"`
	ResponseReplaceRate float64 `ini:"response_replace_rate" yaml:"response_replace_rate"`
	ResponseMutateRate  float64 `ini:"response_mutate_rate" yaml:"response_mutate_rate"`
	ResponseMutatePower float64 `ini:"response_mutate_power" yaml:"response_mutate_power"`
	ResponseMaxValue    float64 `ini:"response_max_value" yaml:"response_max_value"`
	ResponseMinValue    float64 `ini:"response_min_value" yaml:"response_min_value"`

	ActivationDefault    string   `ini:"activation_default" yaml:"activation_default"`
	ActivationOptions    []string `ini:"activation_options" delim:" " yaml:"activation_options"`
	ActivationMutateRate float64  `ini:"activation_mutate_rate" yaml:"activation_mutate_rate"`

	AggregationDefault    string   `ini:"aggregation_default" yaml:"aggregation_default"`
	AggregationOptions    []string `ini:"aggregation_options" delim:" " yaml:"aggregation_options"`
	AggregationMutateRate float64  `ini:"aggregation_mutate_rate" yaml:"aggregation_mutate_rate"`

	// --- Connection Gene parameters ---
	WeightInitMean    float64 `ini:"weight_init_mean" yaml:"weight_init_mean"`
	WeightInitStdev   float64 `ini:"weight_init_stdev" yaml:"weight_init_stdev"`
	WeightInitType    string  `ini:"weight_init_type" yaml:"weight_init_type"`
	WeightReplaceRate float64 `ini:"weight_replace_rate" yaml:"weight_replace_rate"`
	WeightMutateRate  float64 `ini:"weight_mutate_rate" yaml:"weight_mutate_rate"`
	WeightMutatePower float64 `ini:"weight_mutate_power" yaml:"weight_mutate_power"`
	WeightMaxValue    float64 `ini:"weight_max_value" yaml:"weight_max_value"`
	WeightMinValue    float64 `ini:"weight_min_value" yaml:"weight_min_value"`

	EnabledDefault        string  `ini:"enabled_default" yaml:"enabled_default"`
	EnabledMutateRate     float64 `ini:"enabled_mutate_rate" yaml:"enabled_mutate_rate"`
	EnabledRateToTrueAdd  float64 `ini:"enabled_rate_to_true_add" yaml:"enabled_rate_to_true_add"`
	EnabledRateToFalseAdd float64 `ini:"enabled_rate_to_false_add" yaml:"enabled_rate_to_false_add"`
}

// DefaultGenomeConfig returns the parameters used when no [CppnGenome]
// section is configured.
func DefaultGenomeConfig() *GenomeConfig {
	return &GenomeConfig{
		FeedForward:    true,
		ConnAddProb:    0.3,
		ConnDeleteProb: 0.05,
		NodeAddProb:    0.2,
		NodeDeleteProb: 0.05,

		BiasInitMean:    0.0,
		BiasInitStdev:   1.0,
		BiasInitType:    "gaussian",
		BiasReplaceRate: 0.1,
		BiasMutateRate:  0.7,
		BiasMutatePower: 0.5,
		BiasMaxValue:    30.0,
		BiasMinValue:    -30.0,

		ResponseInitMean:  1.0,
		ResponseInitStdev: 0.0,
		ResponseInitType:  "gaussian",
		ResponseMaxValue:  30.0,
		ResponseMinValue:  -30.0,

		ActivationDefault:    "random",
		ActivationOptions:    []string{"sigmoid", "tanh", "gaussian", "sine", "cosine", "abs", "identity"},
		ActivationMutateRate: 0.1,

		AggregationDefault: "sum",
		AggregationOptions: []string{"sum"},

		WeightInitMean:    0.0,
		WeightInitStdev:   1.0,
		WeightInitType:    "gaussian",
		WeightReplaceRate: 0.1,
		WeightMutateRate:  0.8,
		WeightMutatePower: 0.5,
		WeightMaxValue:    30.0,
		WeightMinValue:    -30.0,

		EnabledDefault:    "True",
		EnabledMutateRate: 0.01,
	}
}

// LoadGenomeConfig overlays the keys present in sec onto the defaults.
func LoadGenomeConfig(sec *ini.Section) (*GenomeConfig, error) {
	config := DefaultGenomeConfig()
	if sec == nil {
		return config, nil
	}
	if err := sec.MapTo(config); err != nil {
		return nil, fmt.Errorf("failed to map [%s] section: %w", sec.Name(), err)
	}

	if err := config.Normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// Normalize strips inline comments and stray whitespace from string values
// and then validates the config.
func (gc *GenomeConfig) Normalize() error {
	gc.BiasInitType = cleanIniString(gc.BiasInitType)
	gc.ResponseInitType = cleanIniString(gc.ResponseInitType)
	gc.ActivationDefault = cleanIniString(gc.ActivationDefault)
	gc.AggregationDefault = cleanIniString(gc.AggregationDefault)
	gc.WeightInitType = cleanIniString(gc.WeightInitType)
	gc.EnabledDefault = cleanIniString(gc.EnabledDefault)
	gc.ActivationOptions = cleanOptions(gc.ActivationOptions)
	gc.AggregationOptions = cleanOptions(gc.AggregationOptions)
	return gc.Validate()
}

// LoadGenomeConfigFile reads the named section of an INI file.
func LoadGenomeConfigFile(filePath, section string) (*GenomeConfig, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	if !cfg.HasSection(section) {
		return DefaultGenomeConfig(), nil
	}
	return LoadGenomeConfig(cfg.Section(section))
}

// Validate checks ranges and function names.
func (gc *GenomeConfig) Validate() error {
	if len(gc.ActivationOptions) == 0 {
		return fmt.Errorf("config error: activation_options must be specified")
	}
	if len(gc.AggregationOptions) == 0 {
		return fmt.Errorf("config error: aggregation_options must be specified")
	}
	for _, name := range gc.ActivationOptions {
		if _, err := GetActivation(name); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	for _, name := range gc.AggregationOptions {
		if _, err := GetAggregation(name); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	probs := map[string]float64{
		"conn_add_prob":    gc.ConnAddProb,
		"conn_delete_prob": gc.ConnDeleteProb,
		"node_add_prob":    gc.NodeAddProb,
		"node_delete_prob": gc.NodeDeleteProb,
	}
	for name, p := range probs {
		if p < 0 || p > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", name)
		}
	}
	if gc.BiasMaxValue < gc.BiasMinValue {
		return fmt.Errorf("config error: bias_max_value cannot be less than bias_min_value")
	}
	if gc.ResponseMaxValue < gc.ResponseMinValue {
		return fmt.Errorf("config error: response_max_value cannot be less than response_min_value")
	}
	if gc.WeightMaxValue < gc.WeightMinValue {
		return fmt.Errorf("config error: weight_max_value cannot be less than weight_min_value")
	}
	for _, t := range []string{gc.BiasInitType, gc.ResponseInitType, gc.WeightInitType} {
		switch strings.ToLower(t) {
		case "", "gaussian", "normal", "uniform":
		default:
			return fmt.Errorf("config error: unknown init_type '%s'", t)
		}
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func cleanOptions(opts []string) []string {
	out := opts[:0]
	for _, opt := range opts {
		if opt = strings.TrimSpace(opt); opt != "" {
			out = append(out, opt)
		}
	}
	return out
}
