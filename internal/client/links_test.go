package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOriginOf(t *testing.T) {
	origin, err := originOf("https://www.baslerweb.com/en-us/")
	require.NoError(t, err)
	assert.Equal(t, "https://www.baslerweb.com", origin.String())

	_, err = originOf("/en-us/")
	assert.Error(t, err)
}

func TestAbsolutize(t *testing.T) {
	origin, err := originOf("https://www.baslerweb.com")
	require.NoError(t, err)

	tests := map[string]string{
		"/en-us/cameras/":                         "https://www.baslerweb.com/en-us/cameras/",
		"https://www.baslerweb.com/en-us/shop/x/": "https://www.baslerweb.com/en-us/shop/x/",
		"/en-us/lenses/c-mount/#products":         "https://www.baslerweb.com/en-us/lenses/c-mount/#products",
	}
	for href, want := range tests {
		got, err := absolutize(origin, href)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNormalizeProductLink(t *testing.T) {
	tests := map[string]string{
		"https://www.baslerweb.com/en-us/shop/cam-x":            "https://www.baslerweb.com/en-us/shop/cam-x",
		"https://WWW.Baslerweb.com/en-us/shop//cam-x#top":       "https://www.baslerweb.com/en-us/shop/cam-x",
		"https://www.baslerweb.com/en-us/cameras/../shop/cam-x": "https://www.baslerweb.com/en-us/shop/cam-x",
	}
	for raw, want := range tests {
		got, err := NormalizeProductLink(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got, raw)
	}
}
