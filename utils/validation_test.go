package utils

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/form-builder/models"
)

type typedQuestion struct {
	Type models.QuestionType `binding:"required,question_type"`
}

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators(), "registering twice is allowed")

	for _, qt := range models.QuestionTypes {
		assert.NoError(t, binding.Validator.ValidateStruct(typedQuestion{Type: qt}), qt)
	}
	assert.Error(t, binding.Validator.ValidateStruct(typedQuestion{Type: "checkbox"}))
	assert.Error(t, binding.Validator.ValidateStruct(typedQuestion{}))
}
