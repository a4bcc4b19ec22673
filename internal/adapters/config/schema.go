package config

// Viewcfile represents the structure of the viewc.yaml configuration file.
type Viewcfile struct {
	Version    string            `yaml:"version"`
	Env        string            `yaml:"env"`
	Dev        *bool             `yaml:"dev"`
	Cache      *bool             `yaml:"cache"`
	Hydratable *bool             `yaml:"hydratable"`
	Replace    map[string]any    `yaml:"replace"`
	Dedupe     []string          `yaml:"dedupe"`
	Preprocess []PreprocessorDTO `yaml:"preprocess"`
	Store      string            `yaml:"store"`
}

// PreprocessorDTO represents an external preprocessor command in the configuration.
type PreprocessorDTO struct {
	Name       string   `yaml:"name"`
	Cmd        []string `yaml:"cmd"`
	Extensions []string `yaml:"extensions"`
}
