package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Email     string `binding:"required,email"`
	FirstName string `binding:"required,min=2,max=50"`
	Plan      string `binding:"omitempty,oneof=free basic pro enterprise"`
}

func TestStruct_Valid(t *testing.T) {
	errs := Struct(samplePayload{
		Email:     "jane@school.ca",
		FirstName: "Jane",
		Plan:      "pro",
	})
	assert.Nil(t, errs)
}

func TestStruct_ReportsEveryField(t *testing.T) {
	errs := Struct(samplePayload{
		Email:     "not-an-email",
		FirstName: "J",
		Plan:      "platinum",
	})
	require.Len(t, errs, 3)

	byField := map[string]string{}
	for _, fe := range errs {
		byField[fe.Field] = fe.Message
	}
	assert.Equal(t, "must be a valid email address", byField["email"])
	assert.Equal(t, "must be at least 2 characters", byField["firstName"])
	assert.Equal(t, "must be one of: free basic pro enterprise", byField["plan"])
}

func TestStruct_RequiredFields(t *testing.T) {
	errs := Struct(samplePayload{})
	require.Len(t, errs, 2)
	for _, fe := range errs {
		assert.Equal(t, "this field is required", fe.Message)
	}
}
