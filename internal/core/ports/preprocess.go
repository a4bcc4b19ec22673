package ports

import "go.trai.ch/viewc/internal/core/domain"

// PreprocessorFactory builds preprocessors from project config entries.
// Commands run with root as their working directory.
type PreprocessorFactory func(root string, specs []domain.PreprocessSpec) []domain.Preprocessor
