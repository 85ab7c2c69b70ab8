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

// Package rules implements the EXIF override rule engine: an ordered list of
// rules is matched against a photo's metadata snapshot and produces the tag
// mutations to write back.
package rules

import (
	"regexp"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Tag is a single namespaced metadata tag, e.g. "Exif.Photo.LensModel".
type Tag struct {
	Name  string // namespaced tag key
	Value string // tag value as written
	Type  string // Exiv2 value type, defaults to "Ascii"
}

// 🔍 Pattern is a condition evaluated against one existing tag's value.
type Pattern struct {
	Tag        string // tag the condition reads
	ValueRegex string // unanchored, case-sensitive regular expression

	re *regexp.Regexp // compiled at load time
}

// 📜 Rule emits its tags when its pattern matches. A rule with a nil pattern
// is unconditional.
type Rule struct {
	Pattern *Pattern
	Tags    []Tag
}

// 📚 RuleSet is an ordered list of rules, immutable after Load.
type RuleSet []Rule

// DefaultValueType is assumed when a rule tag does not name one.
const DefaultValueType = "Ascii"

// valueTypes are the Exiv2 type names accepted in rule files.
var valueTypes = map[string]bool{
	"Ascii":     true,
	"Byte":      true,
	"Short":     true,
	"Long":      true,
	"SLong":     true,
	"Rational":  true,
	"SRational": true,
	"Undefined": true,
	"Comment":   true,
}

// ErrConfig classifies every rule-file problem: bad syntax, missing fields,
// invalid regex, unknown value type. Raised once at load, never per photo.
var ErrConfig = errors.Base("invalid override rules")

// Matches reports whether the pattern matches the given metadata snapshot.
// A pattern whose tag is absent from the snapshot is a non-match, not an
// error.
func (p *Pattern) Matches(metadata map[string]string) bool {
	value, ok := metadata[p.Tag]
	if !ok {
		return false
	}
	return p.re.MatchString(value)
}

// compile validates and compiles the pattern's regular expression.
func (p *Pattern) compile() error {
	if p.Tag == "" {
		return errors.Errorf("%w: pattern is missing a tag name", ErrConfig)
	}
	re, err := regexp.Compile(p.ValueRegex)
	if err != nil {
		return errors.Errorf("%w: pattern for %q: %v", ErrConfig, p.Tag, err)
	}
	p.re = re
	return nil
}

// Evaluate computes the mutation sequence for one photo. Every pattern is
// matched against the original metadata snapshot — a later rule never
// observes tags written by an earlier rule in the same pass. The result is
// ordered by rule, then by tag position within the rule; applying it in
// order gives last-write-wins per tag name.
func Evaluate(metadata map[string]string, rs RuleSet) []Tag {
	var muts []Tag
	for _, rule := range rs {
		if rule.Pattern != nil && !rule.Pattern.Matches(metadata) {
			continue
		}
		muts = append(muts, rule.Tags...)
	}
	return muts
}

// Apply folds a mutation sequence into a copy of the base tag map. Untouched
// tags are preserved; for duplicate names the later mutation wins.
func Apply(base map[string]string, muts []Tag) map[string]string {
	merged := make(map[string]string, len(base)+len(muts))
	for name, value := range base {
		merged[name] = value
	}
	for _, tag := range muts {
		merged[tag.Name] = tag.Value
	}
	return merged
}

// validate checks one rule's shape. Compiled as a side effect so that
// Evaluate never sees an unvalidated pattern.
func (r *Rule) validate() error {
	if len(r.Tags) == 0 {
		return errors.Errorf("%w: rule has no tags", ErrConfig)
	}
	for i := range r.Tags {
		tag := &r.Tags[i]
		if tag.Name == "" {
			return errors.Errorf("%w: rule tag %d is missing a name", ErrConfig, i)
		}
		if tag.Value == "" {
			return errors.Errorf("%w: tag %q is missing a value", ErrConfig, tag.Name)
		}
		if tag.Type == "" {
			tag.Type = DefaultValueType
		}
		if !valueTypes[tag.Type] {
			return errors.Errorf("%w: tag %q has unknown value type %q", ErrConfig, tag.Name, tag.Type)
		}
	}
	if r.Pattern != nil {
		if err := r.Pattern.compile(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the whole rule set, compiling every pattern.
func (rs RuleSet) Validate() error {
	for i := range rs {
		if err := rs[i].validate(); err != nil {
			return errors.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}
