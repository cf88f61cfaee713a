// Package config loads command line defaults from TOML files.
package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
)

// TOML is a kong.ConfigurationLoader. Keys match flag names, with either dashes
// or underscores, and nested tables prefix their keys the way embedded flag
// groups do:
//
//	listen = "0.0.0.0:8080"
//
//	[postgres]
//	conn_string = "postgres://localhost/leadcrm"
//
// resolves --listen and --postgres-conn-string for serve, seed and migrate alike.
func TOML(r io.Reader) (kong.Resolver, error) {
	raw := map[string]any{}
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode TOML config: %w", err)
	}

	values := map[string]string{}
	if err := flatten(values, "", raw); err != nil {
		return nil, err
	}

	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		if v, ok := values[normalizeKey(flag.Name)]; ok {
			return v, nil
		}
		return nil, nil
	}), nil
}

func flatten(out map[string]string, prefix string, in map[string]any) error {
	for key, value := range in {
		name := normalizeKey(key)
		if prefix != "" {
			name = prefix + "-" + name
		}

		if table, ok := value.(map[string]any); ok {
			if err := flatten(out, name, table); err != nil {
				return err
			}
			continue
		}

		s, err := stringify(value)
		if err != nil {
			return fmt.Errorf("config key %q: %w", name, err)
		}
		out[name] = s
	}
	return nil
}

// stringify renders a TOML value the way it would be typed on the command line
// so every kong mapper can decode it.
func stringify(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			s, err := stringify(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "_", "-"))
}
