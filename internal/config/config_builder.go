// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
)

// configBuilder collects configuration layers in priority order. Earlier
// layers win: a value already set by env is not overwritten by flags, and
// flags are not overwritten by the JSON file.
type configBuilder struct {
	layers []*StructuredConfig
	err    error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{layers: make([]*StructuredConfig, 0, 3)}
}

// withEnv appends the environment layer.
func (b *configBuilder) withEnv() *configBuilder {
	layer := new(StructuredConfig)
	if err := parseEnv(layer); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	return b.add(layer)
}

// withFlags appends the command-line flag layer.
func (b *configBuilder) withFlags() *configBuilder {
	return b.add(ParseFlags())
}

// withJSON appends the JSON file layer when any earlier layer named a config
// file path. Called last so both env and flags can point at the file.
func (b *configBuilder) withJSON() *configBuilder {
	path := ""
	for _, layer := range b.layers {
		if layer.JSONFilePath != "" {
			path = layer.JSONFilePath
		}
	}
	if path == "" {
		return b
	}

	layer, err := parseJSON(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	return b.add(layer)
}

func (b *configBuilder) add(layer *StructuredConfig) *configBuilder {
	b.layers = append(b.layers, layer)
	return b
}

// build merges the collected layers into one validated config.
func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	cfg := new(StructuredConfig)
	for _, layer := range b.layers {
		if err := mergo.Merge(cfg, layer); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return cfg, cfg.validate()
}
