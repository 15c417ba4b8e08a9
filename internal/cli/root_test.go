package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_ListsSubcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "relay", "kitchen"} {
		assert.True(t, names[want], want)
	}
}

func TestMigrate_MemoryStoreHasNothingToDo(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REMOTE_DB_URL", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("LOG_LEVEL", "error")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"migrate"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "nothing to migrate")
}

func TestRelay_RequiresRedisAndKafka(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")

	root := newRootCmd()
	root.SetArgs([]string{"relay"})
	assert.ErrorContains(t, root.Execute(), "REDIS_ADDR")
}
