package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

const productLinkFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment |
	purell.FlagDecodeUnnecessaryEscapes |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveDotSegments

// originOf strips everything after the host, so "https://host/en-us/" becomes "https://host".
func originOf(baseURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

func absolutize(origin *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return origin.ResolveReference(ref).String(), nil
}

// NormalizeProductLink canonicalizes a product URL before it is stored.
func NormalizeProductLink(link string) (string, error) {
	normalized, err := purell.NormalizeURLString(link, productLinkFlags)
	if err != nil {
		return "", fmt.Errorf("failed to normalize %q: %w", link, err)
	}
	return normalized, nil
}
