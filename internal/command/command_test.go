package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		desc     string
		line     string
		expected Command
	}{
		{
			"verb with one argument",
			"sell BTC",
			Command{Type: Sell, Arguments: []string{"BTC"}},
		},
		{
			"verb with two arguments",
			"register mellody hunter2",
			Command{Type: Register, Arguments: []string{"mellody", "hunter2"}},
		},
		{
			"verb without arguments",
			"list_offerings",
			Command{Type: ListOfferings, Arguments: []string{}},
		},
		{
			"surrounding whitespace",
			"  buy   BTC  100 \r",
			Command{Type: Buy, Arguments: []string{"BTC", "100"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			cmd, err := Parse(tc.line)
			require.NoError(t, err)

			assert.Equal(t, tc.expected.Type, cmd.Type)
			assert.Equal(t, tc.expected.Arguments, cmd.Arguments)
		})
	}
}

func TestParseRejectsUnknownInput(t *testing.T) {
	for _, line := range []string{"", "   ", "destroy BTC", "Register mellody hunter2"} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrInvalidCommand, "line %q should not parse", line)
	}
}
