package common_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suidrift/suidrift/internal/pkg/common"
)

func TestShortAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0xabcd...7890",
		common.ShortAddress("0xabcdef12345678901234567890"))

	// Short values pass through untouched.
	assert.Equal(t, "0xabc", common.ShortAddress("0xabc"))
	assert.Equal(t, "", common.ShortAddress(""))
}

func TestShortID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0xabcdef...7890",
		common.ShortID("0xabcdef12345678901234567890"))

	assert.Equal(t, "0xabcdef12345", common.ShortID("0xabcdef12345"))
}
