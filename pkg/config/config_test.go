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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeFor(t *testing.T) {
	tests := []struct {
		name      string
		size      string
		addBorder bool
		wantErr   bool
		check     func(t *testing.T, r Resize)
	}{
		{
			name:      "large_with_border",
			size:      "large",
			addBorder: true,
			check: func(t *testing.T, r Resize) {
				assert.Equal(t, 4000, r.Width)
				assert.Equal(t, 3500, r.Height)
				assert.Equal(t, 99, r.Quality)
				require.NotNil(t, r.Border)
				assert.Equal(t, 100, r.Border.Size)
				assert.Equal(t, 20, r.Border.BottomPadding)
				require.Len(t, r.Border.Separators, 3)
				assert.Equal(t, 2, r.Border.Separators[1].Size, "large preset uses a 2px dark separator")
			},
		},
		{
			name:      "medium",
			size:      "medium",
			addBorder: true,
			check: func(t *testing.T, r Resize) {
				assert.Equal(t, 2000, r.Width)
				assert.Equal(t, 1500, r.Height)
				assert.Equal(t, 97, r.Quality)
				require.NotNil(t, r.Border)
				assert.Equal(t, 40, r.Border.Size)
				assert.Equal(t, 1, r.Border.Separators[1].Size)
			},
		},
		{
			name:      "small_no_border",
			size:      "small",
			addBorder: false,
			check: func(t *testing.T, r Resize) {
				assert.Equal(t, 900, r.Width)
				assert.Equal(t, 800, r.Height)
				assert.Equal(t, 95, r.Quality)
				assert.Nil(t, r.Border)
			},
		},
		{
			name:    "unknown_size",
			size:    "huge",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ResizeFor(tt.size, tt.addBorder)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, r)
		})
	}
}

func TestNewExport(t *testing.T) {
	e, err := NewExport("medium", true, "overrides.json")
	require.NoError(t, err)
	assert.Equal(t, "medium", e.Size)
	assert.Equal(t, "overrides.json", e.RulesFile)
	assert.Contains(t, e.String(), "2000x1500")
	assert.Contains(t, e.String(), "overrides.json")

	_, err = NewExport("tiny", true, "")
	require.Error(t, err)
}
