// Copyright 2025 Ivan Blazhko
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rules

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for rule-file parsers
type Parser interface {
	// 📝 Parse parses a rule set from bytes
	Parse(ctx context.Context, data []byte) (RuleSet, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

// 🗺️ parsers is the list of available parsers
var parsers []Parser

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🎯 Load reads, parses and validates a rule file. Any failure is a
// configuration error and happens before the first photo is touched.
func Load(ctx context.Context, path string) (RuleSet, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading override rules")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w: no parser for file: %s", ErrConfig, path)
	}

	rs, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", path, err)
	}

	if err := rs.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}

	logger.Debug().Int("rules", len(rs)).Msg("override rules loaded")
	return rs, nil
}

// ruleDoc is the wire shape shared by the JSON and YAML parsers.
type ruleDoc struct {
	Rules []ruleEntry `json:"rules" yaml:"rules"`
}

type ruleEntry struct {
	Pattern *patternEntry `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Tags    []tagEntry    `json:"tags" yaml:"tags"`
}

type patternEntry struct {
	Tag        string `json:"tag" yaml:"tag"`
	ValueRegex string `json:"value_regex" yaml:"value_regex"`
}

type tagEntry struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
	Type  string `json:"value_type,omitempty" yaml:"value_type,omitempty"`
}

func (d *ruleDoc) toRuleSet() RuleSet {
	rs := make(RuleSet, 0, len(d.Rules))
	for _, e := range d.Rules {
		rule := Rule{}
		if e.Pattern != nil {
			rule.Pattern = &Pattern{Tag: e.Pattern.Tag, ValueRegex: e.Pattern.ValueRegex}
		}
		for _, t := range e.Tags {
			rule.Tags = append(rule.Tags, Tag{Name: t.Name, Value: t.Value, Type: t.Type})
		}
		rs = append(rs, rule)
	}
	return rs
}

// 🔧 JSONParser implements the Parser interface for JSON rule files
type JSONParser struct{}

func init() {
	Register(&JSONParser{})
}

func (p *JSONParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".json")
}

func (p *JSONParser) Parse(ctx context.Context, data []byte) (RuleSet, error) {
	var doc ruleDoc
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Errorf("%w: parsing JSON: %v", ErrConfig, err)
	}
	return doc.toRuleSet(), nil
}

// 🔧 YAMLParser implements the Parser interface for YAML rule files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (RuleSet, error) {
	var doc ruleDoc
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Errorf("%w: parsing YAML: %v", ErrConfig, err)
	}
	return doc.toRuleSet(), nil
}

// 🔧 HCLParser implements the Parser interface for HCL rule files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

type hclTag struct {
	Name  string `hcl:"name"`
	Value string `hcl:"value"`
	Type  string `hcl:"value_type,optional"`
}

type hclPattern struct {
	Tag        string `hcl:"tag"`
	ValueRegex string `hcl:"value_regex"`
}

type hclRule struct {
	Pattern *hclPattern `hcl:"pattern,block"`
	Tags    []hclTag    `hcl:"tag,block"`
}

type hclDoc struct {
	Rules []hclRule `hcl:"rule,block"`
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (RuleSet, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "rules.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("%w: parsing HCL: %s", ErrConfig, diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var doc hclDoc
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &doc)
	if diags.HasErrors() {
		return nil, errors.Errorf("%w: decoding HCL: %s", ErrConfig, diags.Error())
	}

	rs := make(RuleSet, 0, len(doc.Rules))
	for _, e := range doc.Rules {
		rule := Rule{}
		if e.Pattern != nil {
			rule.Pattern = &Pattern{Tag: e.Pattern.Tag, ValueRegex: e.Pattern.ValueRegex}
		}
		for _, t := range e.Tags {
			rule.Tags = append(rule.Tags, Tag{Name: t.Name, Value: t.Value, Type: t.Type})
		}
		rs = append(rs, rule)
	}
	return rs, nil
}
