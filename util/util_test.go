package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestCharacterClasses(t *testing.T) {
	testData := []struct {
		b                   byte
		number, letterStart bool
		identifierPart      bool
		blank               bool
	}{
		{b: '0', number: true, identifierPart: true},
		{b: '9', number: true, identifierPart: true},
		{b: 'a', letterStart: true, identifierPart: true},
		{b: 'Z', letterStart: true, identifierPart: true},
		{b: '_', letterStart: true, identifierPart: true},
		{b: ' ', blank: true},
		{b: '\t', blank: true},
		{b: '\r', blank: true},
		{b: '\n'},
		{b: '#'},
	}
	for _, data := range testData {
		assert.Equal(t, data.number, IsNumber(data.b), string(data.b))
		assert.Equal(t, data.letterStart, IsLetterOrUnderscore(data.b), string(data.b))
		assert.Equal(t, data.identifierPart, IsLetterOrUnderscoreOrNumber(data.b), string(data.b))
		assert.Equal(t, data.blank, IsBlank(data.b), string(data.b))
	}
}
