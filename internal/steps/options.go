package steps

import (
	"github.com/pkg/errors"
)

func intOption(options map[string]any, key string, def int) (int, error) {
	raw, ok := options[key]
	if !ok {
		return def, nil
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, errors.Wrapf(ErrInvalidConfig, "%s must be an integer, got %v", key, v)
		}

		return int(v), nil
	default:
		return 0, errors.Wrapf(ErrInvalidConfig, "%s must be an integer, got %T", key, raw)
	}
}

func stringOption(options map[string]any, key, def string) (string, error) {
	raw, ok := options[key]
	if !ok {
		return def, nil
	}

	v, ok := raw.(string)
	if !ok {
		return "", errors.Wrapf(ErrInvalidConfig, "%s must be a string, got %T", key, raw)
	}

	return v, nil
}

func boolOption(options map[string]any, key string, def bool) (bool, error) {
	raw, ok := options[key]
	if !ok {
		return def, nil
	}

	v, ok := raw.(bool)
	if !ok {
		return false, errors.Wrapf(ErrInvalidConfig, "%s must be a boolean, got %T", key, raw)
	}

	return v, nil
}
