package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidIC(t *testing.T) {
	assert.True(t, ValidIC("880112-14-5523"))
	assert.True(t, ValidIC("210404-14-0422"))

	assert.False(t, ValidIC(""))
	assert.False(t, ValidIC("880112145523"))
	assert.False(t, ValidIC("880112-14-552"))
	assert.False(t, ValidIC("88011A-14-5523"))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("0123456789"))
	assert.True(t, ValidPhone("+60123456789"))
	assert.True(t, ValidPhone("60123456789"))
	assert.True(t, ValidPhone("012-3456789"))
	assert.True(t, ValidPhone("+60 12-345 6789"))

	assert.False(t, ValidPhone(""))
	assert.False(t, ValidPhone("012_3456789"))
	assert.False(t, ValidPhone("12345"))
}

func TestValidApplicationRef(t *testing.T) {
	assert.True(t, ValidApplicationRef("APP-2025-00001"))
	assert.True(t, ValidApplicationRef("APP-2024-90147"))

	assert.False(t, ValidApplicationRef("APP-25-00001"))
	assert.False(t, ValidApplicationRef("app-2025-00001"))
	assert.False(t, ValidApplicationRef("APP-2025-001"))
}

func TestStringValidationBuilder(t *testing.T) {
	assert.True(t, NewStringValidation("Aisyah").WithMinLength(2).WithMaxLength(10).Validate())
	assert.False(t, NewStringValidation("A").WithMinLength(2).Validate())
	assert.False(t, NewStringValidation("").Validate())
	assert.True(t, NewStringValidation("").WithRequired(false).Validate())
}
