package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventnav/program-service/internal/model"
)

func TestValidModuleType(t *testing.T) {
	for _, known := range model.ModuleTypes {
		assert.True(t, validModuleType(known), known)
	}
	assert.False(t, validModuleType(""))
	assert.False(t, validModuleType("dashboard"))
	assert.False(t, validModuleType("Program"))
}

func TestValidBadgeType(t *testing.T) {
	assert.True(t, validBadgeType("none"))
	assert.True(t, validBadgeType("count"))
	assert.True(t, validBadgeType("dot"))
	assert.False(t, validBadgeType(""))
	assert.False(t, validBadgeType("counter"))
}

func TestValidEventStatus(t *testing.T) {
	assert.True(t, validEventStatus("upcoming"))
	assert.True(t, validEventStatus("active"))
	assert.True(t, validEventStatus("finished"))
	assert.False(t, validEventStatus("archived"))
}
