package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedOrigins(t *testing.T) {
	prod := AllowedOrigins("https://www.jazzcoasters.com", false)
	assert.True(t, prod["https://www.jazzcoasters.com"])
	assert.False(t, prod["https://jazzcoasters.com"])
	assert.False(t, prod["http://localhost:3000"])
	assert.False(t, prod["http://www.jazzcoasters.com"])

	apex := AllowedOrigins("https://jazzcoasters.com", true)
	assert.True(t, apex["https://jazzcoasters.com"])
	assert.False(t, apex["https://www.jazzcoasters.com"])
	assert.True(t, apex["http://localhost:3000"])
	assert.True(t, apex["http://127.0.0.1:3000"])

	assert.Len(t, AllowedOrigins("not a url", false), 0)
}
