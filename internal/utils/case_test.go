package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Civil", TitleCase("civil"))
	assert.Equal(t, "Civil", TitleCase("CIVIL"))
	assert.Equal(t, "Writ Petition", TitleCase("writ petition"))
	assert.Equal(t, "Writ Petition", TitleCase("  WRIT   petition  "))
	assert.Equal(t, "", TitleCase(""))
	assert.Equal(t, "", TitleCase("   "))
}

func TestIsAlphanumeric(t *testing.T) {
	assert.True(t, IsAlphanumeric("abc123"))
	assert.True(t, IsAlphanumeric("ABC"))
	assert.True(t, IsAlphanumeric("000"))

	assert.False(t, IsAlphanumeric(""))
	assert.False(t, IsAlphanumeric("abc 123"))
	assert.False(t, IsAlphanumeric("abc-123"))
	assert.False(t, IsAlphanumeric("çase"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "ABC vs XYZ", CleanText("  ABC   vs \n XYZ  "))
	assert.Equal(t, "", CleanText("   \t\n "))
	assert.Equal(t, "single", CleanText("single"))
}
