package limitxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcode-postprocess/pkg/gcode"
)

func TestResolveRange(t *testing.T) {
	// 12 layers: blocks 2..13, trailer 14
	doc := newDoc(t, 12)

	tests := []struct {
		name       string
		start, end int
		want       Range
		startFound bool
		endFound   bool
	}{
		{"whole file", 1, ToEnd, Range{Start: 2, End: 13}, true, false},
		{"inclusive end", 2, 3, Range{Start: 3, End: 5}, true, true},
		{"two digit end", 1, 10, Range{Start: 2, End: 12}, true, true},
		{"start missing", 40, ToEnd, Range{Start: 2, End: 13}, false, false},
		{"end missing", 3, 40, Range{Start: 4, End: 13}, true, false},
		{"end zero", 3, 0, Range{Start: 4, End: 13}, true, false},
		{"last layer end", 1, 11, Range{Start: 2, End: 13}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, startFound, endFound := ResolveRange(doc, tt.start, tt.end)
			assert.Equal(t, tt.want, r)
			assert.Equal(t, tt.startFound, startFound)
			assert.Equal(t, tt.endFound, endFound)
		})
	}
}

func TestResolveRangeWholeLineMarker(t *testing.T) {
	// ;LAYER:1 must not be found inside ;LAYER:10
	doc, err := gcode.NewDocument([]string{
		"", "G28\n",
		";LAYER:10\nG1 X1\n",
		";LAYER:1\nG1 X1\n",
		"M84\n",
	})
	require.NoError(t, err)

	r, found, _ := ResolveRange(doc, 2, ToEnd)
	require.True(t, found)
	assert.Equal(t, Range{Start: 3, End: 3}, r)
}
