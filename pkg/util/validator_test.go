package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.example.org",
		"a+tag@example.co",
	}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), email)
	}

	invalid := []string{
		"",
		"user",
		"user@",
		"@example.com",
		"user@example",
		"user example@example.com",
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), email)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := GeneratePasswordHash("s3cret-password")
	assert.Nil(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPasswordHash(hash, "s3cret-password"))
	assert.False(t, CheckPasswordHash(hash, "wrong-password"))
}

func TestGetRandomString(t *testing.T) {
	s := GetRandomString(32)
	assert.Len(t, s, 32)
	// 两次生成结果相同的概率可以忽略
	assert.NotEqual(t, s, GetRandomString(32))
}
