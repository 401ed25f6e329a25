package rules

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a RuleSet by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (Default(ctx))
//  2. file (YAML) if GULLY_RULES is set
//  3. env (prefix GULLY_RULES_)
func Load(ctx context.Context) (*RuleSet, error) {
	return LoadFile(ctx, os.Getenv("GULLY_RULES"))
}

// LoadFile is Load with an explicit rules file path; an empty path skips
// the file layer. The env layer still applies on top.
func LoadFile(ctx context.Context, path string) (*RuleSet, error) {
	base := Default(ctx)

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadRules, path, err)
		}
	}

	// Environment variables: GULLY_RULES_POINTS_PER_WICKET, ...
	// Map env keys like GULLY_RULES_FIFTY_BONUS -> fifty_bonus (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("GULLY_RULES_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "gully_rules_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadRules, err)
	}

	// Unmarshal into a copy
	rs := *base
	if err := k.UnmarshalWithConf("", &rs, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadRules, err)
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}
