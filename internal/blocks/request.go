package blocks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dthai91/edx-platform/internal/platform/apierr"
)

// RawQuery is the unvalidated request input. Multi-valued parameters keep
// every supplied value; each value may itself be comma-delimited.
type RawQuery struct {
	UsageKey        string
	User            []string
	Depth           []string
	NavDepth        []string
	BlockCounts     []string
	StudentViewData []string
	RequestedFields []string
	ReturnType      []string
}

var recognizedFields = map[string]struct{}{
	FieldChildren:        {},
	FieldGraded:          {},
	FieldFormat:          {},
	FieldStudentViewData: {},
	FieldMultiDevice:     {},
	FieldStudentViewURL:  {},
	FieldLMSWebURL:       {},
	FieldBlockCounts:     {},
}

// Resolve validates and normalizes a raw query into a Config. Every
// invalid field is reported, not just the first; a non-nil error is always
// an apierr validation error and the pipeline never runs on partial input.
func Resolve(q RawQuery, viewer Viewer) (Config, error) {
	fieldErrs := make(map[string][]string)

	cfg := Config{
		Viewer:     viewer,
		NavDepth:   -1,
		ReturnType: ReturnTypeDict,
	}

	if strings.TrimSpace(q.UsageKey) == "" {
		fieldErrs["usage_key"] = append(fieldErrs["usage_key"], "usage_key is required")
	}

	if raw, ok := firstValue(q.User); ok {
		cfg.RequestedUser = raw
	}

	if raw, ok := firstValue(q.Depth); ok {
		if raw == "all" {
			cfg.DepthAll = true
		} else {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				fieldErrs["depth"] = append(fieldErrs["depth"],
					fmt.Sprintf("%q is not a non-negative integer or 'all'", raw))
			} else {
				cfg.Depth = n
			}
		}
	}

	if raw, ok := firstValue(q.NavDepth); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fieldErrs["nav_depth"] = append(fieldErrs["nav_depth"],
				fmt.Sprintf("%q is not a non-negative integer", raw))
		} else {
			cfg.NavDepth = n
		}
	}

	if raw, ok := firstValue(q.ReturnType); ok {
		switch raw {
		case ReturnTypeDict, ReturnTypeList:
			cfg.ReturnType = raw
		default:
			fieldErrs["return_type"] = append(fieldErrs["return_type"],
				fmt.Sprintf("%q is not one of 'dict', 'list'", raw))
		}
	}

	// Unknown block types are accepted in block_counts and
	// student_view_data for forward compatibility; unknown requested
	// fields are dropped rather than rejected.
	cfg.BlockCounts = tokenSet(q.BlockCounts)
	cfg.StudentViewData = tokenSet(q.StudentViewData)
	cfg.RequestedFields = make(map[string]struct{})
	for token := range tokenSet(q.RequestedFields) {
		if _, ok := recognizedFields[token]; ok {
			cfg.RequestedFields[token] = struct{}{}
		}
	}
	if len(cfg.BlockCounts) > 0 {
		cfg.RequestedFields[FieldBlockCounts] = struct{}{}
	}
	if len(cfg.StudentViewData) > 0 {
		cfg.RequestedFields[FieldStudentViewData] = struct{}{}
	}

	if len(fieldErrs) > 0 {
		return Config{}, apierr.Validation(fieldErrs)
	}
	return cfg, nil
}

func firstValue(values []string) (string, bool) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v, true
		}
	}
	return "", false
}

func tokenSet(values []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, v := range values {
		for _, token := range strings.Split(v, ",") {
			token = strings.TrimSpace(token)
			if token != "" {
				out[token] = struct{}{}
			}
		}
	}
	return out
}
