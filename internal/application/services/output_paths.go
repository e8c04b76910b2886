package services

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/domain/values"
)

const defaultOutputStem = "xrd_profiles"

// ResolveOutputPaths assigns one output path per composition. With a single
// composition exactly one path is required. With several compositions either
// one path per composition is given, or a single path is expanded to
// <stem>_f1-<f>_f2-<f>.<format> for each of them.
func ResolveOutputPaths(paths []string, compositions []values.Composition, format string) ([]string, error) {
	raw := splitOutputPaths(paths)
	if len(raw) == 0 {
		return nil, apperrors.NewValidationError("output", "at least one output path is required")
	}

	if len(compositions) == 1 {
		if len(raw) != 1 {
			return nil, apperrors.NewValidationError("output", fmt.Sprintf("a single composition takes one output path, got %d", len(raw)))
		}
		return raw, nil
	}

	if len(raw) == len(compositions) {
		return raw, nil
	}

	if len(raw) == 1 {
		base := raw[0]
		dir := filepath.Dir(base)
		stem := strings.TrimSuffix(filepath.Base(base), filepath.Ext(base))
		if stem == "" || stem == "." {
			stem = defaultOutputStem
		}
		resolved := make([]string, len(compositions))
		for i, c := range compositions {
			resolved[i] = filepath.Join(dir, fmt.Sprintf("%s_%s.%s", stem, c.Tag(), format))
		}
		return resolved, nil
	}

	return nil, apperrors.NewValidationError("output",
		fmt.Sprintf("%d output paths for %d compositions", len(raw), len(compositions)))
}

// splitOutputPaths flattens comma-separated path lists and drops empty entries.
func splitOutputPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		for _, part := range strings.Split(p, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
