package compiler

import (
	"fmt"

	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/zerr"
)

// Validate checks that output holds exactly one chunk and returns it.
func Validate(filename string, output domain.Output) (domain.OutputItem, error) {
	if n := len(output.Items); n != 1 {
		err := zerr.Wrap(domain.ErrInvalidOutputLength,
			fmt.Sprintf("compile output for %s has %d items", filename, n))
		err = zerr.With(err, "code", domain.CodeInvalidLength)
		err = zerr.With(err, "filename", filename)
		return domain.OutputItem{}, zerr.With(err, "count", n)
	}

	item := output.Items[0]
	if item.Kind != domain.KindChunk {
		err := zerr.Wrap(domain.ErrInvalidOutputType,
			fmt.Sprintf("compile output for %s is an asset (%s)", filename, item.FileName))
		err = zerr.With(err, "code", domain.CodeInvalidType)
		err = zerr.With(err, "filename", filename)
		return domain.OutputItem{}, zerr.With(err, "kind", string(item.Kind))
	}

	return item, nil
}
