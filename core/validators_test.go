package core

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitValidators(t *testing.T) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	InitValidators(validate, translator)

	type form struct {
		Name  string      `json:"name" validate:"required"`
		Hours json.Number `json:"hours" validate:"required,numeric,nonneg"`
		Score float64     `json:"score" validate:"nonneg"`
		Skip  string      `json:"-"`
	}

	tests := []struct {
		name string
		form form
		want map[string]string
	}{
		{name: "valid", form: form{Name: "Ann", Hours: "0", Score: 3}},
		{
			name: "required", form: form{},
			want: map[string]string{"name": "this field is required", "hours": "this field is required"},
		},
		{name: "not a number", form: form{Name: "Ann", Hours: "a lot"}, want: map[string]string{"hours": "hours must be a number"}},
		{
			name: "negative", form: form{Name: "Ann", Hours: "-2.5", Score: -1},
			want: map[string]string{"hours": "hours cannot be negative", "score": "score cannot be negative"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.form)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "error = %v", err)

			got := make(map[string]string, len(vErrs))
			for _, fe := range vErrs {
				got[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Ann Lee", CleanString("  Ann Lee \n"))
	assert.Equal(t, "ann lee", CleanString("  Ann Lee \n", true))
}
