package tasks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/auditpulse/evalengine/pkg/tasks"
)

func TestNewWithConfig_InvalidConnString(t *testing.T) {
	_, err := tasks.NewWithConfig(tasks.RepositoryConfig{
		ConnString: "://not-a-connection-string",
	})
	assert.Error(t, err)
}
