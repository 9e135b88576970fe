package commands

import (
	"strings"
	"testing"

	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/stretchr/testify/assert"
)

func TestNewObjectsCommand(t *testing.T) {
	cmd := NewObjectsCommand()
	assert.Equal(t, "objects", cmd.Use)
	assert.Equal(t, []string{"obj"}, cmd.Aliases)
	assert.Equal(t, "Run preset queries for common objects", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 2)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "query")
}

func TestObjectsQueryCommand(t *testing.T) {
	cmd := newObjectsQueryCommand()
	assert.Equal(t, "query NAME", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("all"))
	assert.NotNil(t, cmd.Flags().Lookup("max-pages"))

	saveFlag := cmd.Flags().Lookup("save")
	assert.NotNil(t, saveFlag)
	assert.Equal(t, constants.ExportFileName, saveFlag.NoOptDefVal)
}

func TestPresetQueries(t *testing.T) {
	assert.Len(t, presetQueries, 7)

	for _, preset := range presetQueries {
		assert.NotEmpty(t, preset.Name)
		assert.True(t, strings.HasPrefix(preset.Query, "SELECT "), "preset %s", preset.Name)
	}
}

func TestFindPreset(t *testing.T) {
	preset, found := findPreset("Accounts")
	assert.True(t, found)
	assert.Equal(t, "SELECT Id, Name, Type FROM Account LIMIT 10", preset.Query)

	// Lookup ignores case.
	preset, found = findPreset("setupaudittrail")
	assert.True(t, found)
	assert.Equal(t, "SetupAuditTrail", preset.Name)

	preset, found = findPreset("GROUPMEMBER")
	assert.True(t, found)
	assert.Equal(t, "GroupMember", preset.Name)

	preset, found = findPreset("Nonexistent")
	assert.False(t, found)
	assert.Nil(t, preset)
}

func TestPresetNames(t *testing.T) {
	names := presetNames()

	for _, expected := range []string{"Accounts", "Contacts", "Opportunities", "Leads", "Cases", "SetupAuditTrail", "GroupMember"} {
		assert.Contains(t, names, expected)
	}
}
