package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "2s" parse with Go
// duration syntax. yaml.v3 only decodes bare integers into
// time.Duration, which nobody wants to write by hand in nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// CollectionConfig holds per-collection overrides loaded from the .docarc
// file. The remote repository gates some collections behind cookies (age
// verification, consent banners), and busier collections may warrant
// slower request pacing.
type CollectionConfig struct {
	// Cookie is an HTTP cookie sent with every request to this
	// collection. Format: "name=value" or "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with requests to this collection.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MinDelay and MaxDelay override the global politeness window.
	MinDelay Duration `yaml:"minDelay,omitempty"`
	MaxDelay Duration `yaml:"maxDelay,omitempty"`

	// Extensions overrides the accepted file extension set.
	Extensions []string `yaml:"extensions,omitempty"`
}

// File represents the structure of the .docarc configuration file.
type File struct {
	// Collections maps collection paths (e.g. "epstein/doj-disclosures")
	// to their overrides.
	Collections map[string]CollectionConfig `yaml:"collections,omitempty"`

	// Defaults applies to every collection unless overridden.
	Defaults CollectionConfig `yaml:"defaults,omitempty"`
}

// GetCollectionConfig returns the configuration for a collection, merging
// collection-specific values over the defaults.
func (f *File) GetCollectionConfig(collection string) CollectionConfig {
	result := f.Defaults

	override, ok := f.Collections[collection]
	if !ok {
		return result
	}
	if override.Cookie != "" {
		result.Cookie = override.Cookie
	}
	if len(override.Headers) > 0 {
		// Copy before merging: result.Headers still aliases the
		// defaults map, which must stay untouched for other collections.
		merged := make(map[string]string, len(result.Headers)+len(override.Headers))
		for k, v := range result.Headers {
			merged[k] = v
		}
		for k, v := range override.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}
	if override.MinDelay > 0 {
		result.MinDelay = override.MinDelay
	}
	if override.MaxDelay > 0 {
		result.MaxDelay = override.MaxDelay
	}
	if len(override.Extensions) > 0 {
		result.Extensions = override.Extensions
	}
	return result
}
