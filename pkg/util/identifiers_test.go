package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPAN(t *testing.T) {
	tests := []struct {
		name  string
		pan   string
		valid bool
	}{
		{"Valid PAN", "ABCDE1234F", true},
		{"Lowercase rejected", "abcde1234f", false},
		{"Too short", "ABCDE1234", false},
		{"Too long", "ABCDE1234FG", false},
		{"Digits in wrong place", "AB1DE1234F", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidPAN(tt.pan))
		})
	}
}

func TestIsValidAadhaar(t *testing.T) {
	tests := []struct {
		name    string
		aadhaar string
		valid   bool
	}{
		{"Valid Aadhaar", "234567890123", true},
		{"Leading zero rejected", "034567890123", false},
		{"Leading one rejected", "134567890123", false},
		{"Too short", "23456789012", false},
		{"Non-numeric", "23456789012A", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidAadhaar(tt.aadhaar))
		})
	}
}

func TestIsValidGSTIN(t *testing.T) {
	tests := []struct {
		name  string
		gstin string
		valid bool
	}{
		{"Valid GSTIN", "29ABCDE1234F1Z5", true},
		{"Missing Z marker", "29ABCDE1234F1X5", false},
		{"Too short", "29ABCDE1234F1Z", false},
		{"Bad state code", "2XABCDE1234F1Z5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidGSTIN(tt.gstin))
		})
	}
}

func TestIsValidPINCode(t *testing.T) {
	assert.True(t, IsValidPINCode("560001"))
	assert.False(t, IsValidPINCode("060001"))
	assert.False(t, IsValidPINCode("5600"))
	assert.False(t, IsValidPINCode("56000A"))
}

func TestIsValidMobile(t *testing.T) {
	assert.True(t, IsValidMobile("9876543210"))
	assert.False(t, IsValidMobile("1234567890"))
	assert.False(t, IsValidMobile("98765432101"))
}
