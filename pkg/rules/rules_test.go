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

package rules_test

import (
	"testing"

	"github.com/iblazhko/photoflow/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lensRules is the rule set from the project README: rewrite an adapted
// Voigtlander lens that the camera reports as a generic Leica M 35mm.
func lensRules(t *testing.T) rules.RuleSet {
	t.Helper()
	rs := rules.RuleSet{
		{
			Pattern: &rules.Pattern{Tag: "Exif.Photo.LensModel", ValueRegex: "Leica M 35mm"},
			Tags: []rules.Tag{
				{Name: "Exif.Photo.LensMake", Value: "Voigtlander"},
				{Name: "Exif.Photo.LensModel", Value: "Voigtlander 35mm f1.5 Nokton VM"},
			},
		},
	}
	require.NoError(t, rs.Validate())
	return rs
}

func TestEvaluate_UnconditionalRule(t *testing.T) {
	rs := rules.RuleSet{
		{Tags: []rules.Tag{{Name: "Exif.Image.Artist", Value: "John Smith"}}},
	}
	require.NoError(t, rs.Validate())

	muts := rules.Evaluate(map[string]string{}, rs)
	require.Len(t, muts, 1)
	assert.Equal(t, "Exif.Image.Artist", muts[0].Name)
	assert.Equal(t, "John Smith", muts[0].Value)
	assert.Equal(t, "Ascii", muts[0].Type, "value type should default to Ascii")
}

func TestEvaluate_UnconditionalRulesIgnoreMetadata(t *testing.T) {
	rs := rules.RuleSet{
		{Tags: []rules.Tag{{Name: "Exif.Image.Artist", Value: "John Smith"}}},
		{Tags: []rules.Tag{{Name: "Exif.Image.Copyright", Value: "(c) John Smith"}}},
	}
	require.NoError(t, rs.Validate())

	for _, metadata := range []map[string]string{
		nil,
		{},
		{"Exif.Image.Artist": "Someone Else", "Exif.Photo.LensModel": "whatever"},
	} {
		muts := rules.Evaluate(metadata, rs)
		require.Len(t, muts, 2, "unconditional rules should always emit all tags")
		assert.Equal(t, "Exif.Image.Artist", muts[0].Name, "rule order should be preserved")
		assert.Equal(t, "Exif.Image.Copyright", muts[1].Name, "rule order should be preserved")
	}
}

func TestEvaluate_PatternMatch(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		wantTags int
	}{
		{
			name:     "matching_value",
			metadata: map[string]string{"Exif.Photo.LensModel": "Leica M 35mm"},
			wantTags: 2,
		},
		{
			name:     "substring_match",
			metadata: map[string]string{"Exif.Photo.LensModel": "body + Leica M 35mm adapted"},
			wantTags: 2,
		},
		{
			name:     "non_matching_value",
			metadata: map[string]string{"Exif.Photo.LensModel": "Leica M 50mm"},
			wantTags: 0,
		},
		{
			name:     "case_sensitive",
			metadata: map[string]string{"Exif.Photo.LensModel": "leica m 35mm"},
			wantTags: 0,
		},
		{
			name:     "tag_absent",
			metadata: map[string]string{},
			wantTags: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			muts := rules.Evaluate(tt.metadata, lensRules(t))
			assert.Len(t, muts, tt.wantTags)
			if tt.wantTags == 2 {
				assert.Equal(t, "Exif.Photo.LensMake", muts[0].Name, "tag order within the rule should be preserved")
				assert.Equal(t, "Voigtlander", muts[0].Value)
				assert.Equal(t, "Exif.Photo.LensModel", muts[1].Name)
				assert.Equal(t, "Voigtlander 35mm f1.5 Nokton VM", muts[1].Value)
			}
		})
	}
}

func TestEvaluate_MatchesOriginalSnapshotOnly(t *testing.T) {
	// Rule A rewrites LensModel; rule B patterns on LensModel. B must match
	// the value read from the file, never A's output.
	rs := rules.RuleSet{
		{
			Tags: []rules.Tag{{Name: "Exif.Photo.LensModel", Value: "Rewritten Lens"}},
		},
		{
			Pattern: &rules.Pattern{Tag: "Exif.Photo.LensModel", ValueRegex: "^Rewritten Lens$"},
			Tags:    []rules.Tag{{Name: "Exif.Image.Artist", Value: "should never appear"}},
		},
		{
			Pattern: &rules.Pattern{Tag: "Exif.Photo.LensModel", ValueRegex: "^Original Lens$"},
			Tags:    []rules.Tag{{Name: "Exif.Image.Copyright", Value: "from original value"}},
		},
	}
	require.NoError(t, rs.Validate())

	metadata := map[string]string{"Exif.Photo.LensModel": "Original Lens"}
	muts := rules.Evaluate(metadata, rs)

	require.Len(t, muts, 2)
	assert.Equal(t, "Exif.Photo.LensModel", muts[0].Name)
	assert.Equal(t, "Exif.Image.Copyright", muts[1].Name)
	assert.Equal(t, "Original Lens", metadata["Exif.Photo.LensModel"], "input snapshot should not be mutated")
}

func TestApply_LastWriteWins(t *testing.T) {
	base := map[string]string{
		"Exif.Image.Make":        "RICOH IMAGING COMPANY, LTD.",
		"Exif.Photo.LensModel":   "stock",
		"Exif.Image.Copyright":   "untouched",
		"Exif.Photo.ExifVersion": "0232",
	}
	muts := []rules.Tag{
		{Name: "Exif.Photo.LensModel", Value: "first write"},
		{Name: "Exif.Photo.LensMake", Value: "Voigtlander"},
		{Name: "Exif.Photo.LensModel", Value: "second write"},
	}

	merged := rules.Apply(base, muts)

	assert.Equal(t, "second write", merged["Exif.Photo.LensModel"], "later mutation should win")
	assert.Equal(t, "Voigtlander", merged["Exif.Photo.LensMake"])
	assert.Equal(t, "untouched", merged["Exif.Image.Copyright"], "unrelated tags should be preserved")
	assert.Equal(t, "stock", base["Exif.Photo.LensModel"], "base map should not be mutated")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		rs          rules.RuleSet
		wantErr     bool
		errContains string
	}{
		{
			name: "valid",
			rs: rules.RuleSet{
				{Tags: []rules.Tag{{Name: "Exif.Image.Artist", Value: "x", Type: "Ascii"}}},
			},
		},
		{
			name:        "no_tags",
			rs:          rules.RuleSet{{}},
			wantErr:     true,
			errContains: "no tags",
		},
		{
			name: "tag_missing_name",
			rs: rules.RuleSet{
				{Tags: []rules.Tag{{Value: "x"}}},
			},
			wantErr:     true,
			errContains: "missing a name",
		},
		{
			name: "tag_missing_value",
			rs: rules.RuleSet{
				{Tags: []rules.Tag{{Name: "Exif.Image.Artist"}}},
			},
			wantErr:     true,
			errContains: "missing a value",
		},
		{
			name: "unknown_value_type",
			rs: rules.RuleSet{
				{Tags: []rules.Tag{{Name: "Exif.Image.Artist", Value: "x", Type: "Float128"}}},
			},
			wantErr:     true,
			errContains: "unknown value type",
		},
		{
			name: "bad_regex",
			rs: rules.RuleSet{
				{
					Pattern: &rules.Pattern{Tag: "Exif.Photo.LensModel", ValueRegex: "35mm["},
					Tags:    []rules.Tag{{Name: "Exif.Image.Artist", Value: "x"}},
				},
			},
			wantErr:     true,
			errContains: "pattern",
		},
		{
			name: "pattern_missing_tag",
			rs: rules.RuleSet{
				{
					Pattern: &rules.Pattern{ValueRegex: "35mm"},
					Tags:    []rules.Tag{{Name: "Exif.Image.Artist", Value: "x"}},
				},
			},
			wantErr:     true,
			errContains: "missing a tag name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rs.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, rules.ErrConfig)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
		})
	}
}
