package domain

// StageName identifies a pipeline stage.
type StageName string

// Pipeline stages in execution order.
const (
	StageSubstitute StageName = "substitute"
	StageTranspile  StageName = "transpile"
	StageResolve    StageName = "resolve"
	StageNormalize  StageName = "normalize"
)

// Stage is one step of the bundling pipeline. Exactly one of the config
// pointers is set, matching Name.
type Stage struct {
	Name       StageName
	Substitute *SubstitutionConfig
	Transpile  *TranspileConfig
	Resolve    *ResolveConfig
	Normalize  *NormalizeConfig
}

// SubstitutionConfig replaces identifiers with literal values.
type SubstitutionConfig struct {
	Values map[string]any
}

// TranspileConfig configures template to module transpilation.
type TranspileConfig struct {
	Generate           string
	Hydratable         bool
	Dev                bool
	PreserveComments   bool
	PreserveWhitespace bool
	CSS                bool
	Preprocess         []Preprocessor
}

// ResolveConfig configures module resolution.
type ResolveConfig struct {
	Dedupe []string
}

// NormalizeConfig configures the emitted module format.
type NormalizeConfig struct {
	Format    string
	Exports   string
	SourceMap bool
}

// Plan is the immutable, fully resolved description of one compile request.
type Plan struct {
	Filename string
	Flags    Flags

	// Key is nil when caching is disabled for the request.
	Key *CacheKey

	Stages []Stage
}

// Stage returns the stage with the given name, or nil.
func (p Plan) Stage(name StageName) *Stage {
	for i := range p.Stages {
		if p.Stages[i].Name == name {
			return &p.Stages[i]
		}
	}
	return nil
}
