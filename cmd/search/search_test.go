package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fjacquet/budget-cli/cmd/search"
)

func TestSearchCommand_Metadata(t *testing.T) {
	assert.Equal(t, "search <term>...", search.Cmd.Use)
	assert.Contains(t, search.Cmd.Short, "Search transactions")
	assert.NotNil(t, search.Cmd.RunE)
}

func TestSearchCommand_Flags(t *testing.T) {
	anyFlag := search.Cmd.Flags().Lookup("any")
	assert.NotNil(t, anyFlag)
	assert.Equal(t, "a", anyFlag.Shorthand)

	notesFlag := search.Cmd.Flags().Lookup("notes")
	assert.NotNil(t, notesFlag)
	assert.Equal(t, "n", notesFlag.Shorthand)
	assert.Equal(t, "false", notesFlag.DefValue)
}
