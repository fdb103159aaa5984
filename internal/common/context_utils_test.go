package common

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUUID(t *testing.T) {
	id := uuid.New()

	got, err := ValidateUUID(" "+id.String()+" ", "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	for _, bad := range []string{"", "abc", "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"} {
		_, err := ValidateUUID(bad, "id")
		assert.Error(t, err, bad)
	}
}

func TestValidateDateFormat(t *testing.T) {
	assert.NoError(t, ValidateDateFormat("", "expiry_date"))
	assert.NoError(t, ValidateDateFormat("2024-02-29", "expiry_date"))
	assert.Error(t, ValidateDateFormat("2023-02-29", "expiry_date"))
	assert.Error(t, ValidateDateFormat("03/01/2024", "expiry_date"))
}

func TestValidateOptionalString(t *testing.T) {
	s := "  milk  "
	require.NoError(t, ValidateOptionalString(&s, "name", 10))
	assert.Equal(t, "milk", s)

	long := "abcdefghijk"
	assert.Error(t, ValidateOptionalString(&long, "name", 10))
	assert.NoError(t, ValidateOptionalString(nil, "name", 10))
}

func TestUserIDContext(t *testing.T) {
	_, ok := GetUserIDFromContext(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := GetUserIDFromContext(WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}
