package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"reader@uni.edu",
		"first.last@mail.example.org",
		"x@y.z",
	}
	for _, email := range valid {
		require.NoError(t, validateEmail(email), "expected %q to be accepted", email)
	}

	invalid := []string{
		"",
		"reader",
		"reader@",
		"@uni.edu",
		"reader@localhost",
	}
	for _, email := range invalid {
		require.Error(t, validateEmail(email), "expected %q to be rejected", email)
	}
}
