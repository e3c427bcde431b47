package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleSettings struct {
	Endpoint string `validate:"url"`
	Level    string `validate:"oneof=debug info warn error"`
	Port     int    `validate:"min=1,max=65535"`
}

func TestValidate(t *testing.T) {
	valid := sampleSettings{Endpoint: "https://bitjita.com", Level: "info", Port: 3004}
	got, err := Validate(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, got)

	_, err = Validate(sampleSettings{Endpoint: "not a url", Level: "info", Port: 3004})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Endpoint")

	_, err = Validate(sampleSettings{Endpoint: "https://bitjita.com", Level: "loud", Port: 3004})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")

	_, err = Validate(sampleSettings{Endpoint: "https://bitjita.com", Level: "info", Port: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Port")
}

func TestValidateValue(t *testing.T) {
	require.NoError(t, ValidateValue("https://bitjita.com/claims/42", "url"))
	require.Error(t, ValidateValue("", "required"))
}
