package show_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fjacquet/budget-cli/cmd/show"
)

func TestShowCommand_Metadata(t *testing.T) {
	assert.Equal(t, "show [category]", show.Cmd.Use)
	assert.Contains(t, show.Cmd.Short, "Show rendered transactions")
	assert.NotNil(t, show.Cmd.RunE)
}

func TestShowCommand_Flags(t *testing.T) {
	unselectedFlag := show.Cmd.Flags().Lookup("unselected")
	assert.NotNil(t, unselectedFlag)
	assert.Equal(t, "u", unselectedFlag.Shorthand)
	assert.Equal(t, "false", unselectedFlag.DefValue)

	outputFlag := show.Cmd.Flags().Lookup("output")
	assert.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}
