package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/soql/cmd/soql/commands"
	"github.com/stretchr/testify/assert"
)

func TestNewVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewVersionCommand("1.0.0", "abc1234", "2024-01-15")
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Display version information", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}
