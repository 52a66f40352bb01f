package input

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DirectReader_ReadCommand(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		allowBlank  bool
		expectLines []string
	}{
		{
			name:        "skips blank lines",
			input:       "2+2\n\n   \nSTEP\n",
			expectLines: []string{"2+2", "STEP"},
		},
		{
			name:        "blank lines allowed",
			input:       "2+2\n\nSTEP\n",
			allowBlank:  true,
			expectLines: []string{"2+2", "", "STEP"},
		},
		{
			name:        "last line without newline",
			input:       "SOLVE 1+1\nQUIT",
			expectLines: []string{"SOLVE 1+1", "QUIT"},
		},
		{
			name:        "normalizes decomposed symbols",
			input:       "1 =\u0338 2\n",
			expectLines: []string{"1 \u2260 2"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			r := NewDirectReader(strings.NewReader(tc.input))
			r.AllowBlank(tc.allowBlank)
			defer r.Close()

			var actual []string
			for {
				line, err := r.ReadCommand()
				if err == io.EOF {
					assert.Empty(line)
					break
				}
				if !assert.NoError(err) {
					return
				}
				actual = append(actual, line)
			}

			assert.Equal(tc.expectLines, actual)
		})
	}
}
