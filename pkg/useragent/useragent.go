// Package useragent builds the User-Agent header sent with every Web API
// request.
package useragent

import (
	"fmt"
	"runtime"
	"strings"
)

// Product is the default product token.
const Product = "spotigo"

// String returns a user agent of the form
// "spotigo/<version> (go1.25.0; linux/amd64)". An empty version is reported
// as "dev".
//
// Example:
//
//	ua := useragent.String(version.Version)
func String(version string) string {
	return WithProduct(Product, version)
}

// WithProduct is String with a custom product token, for applications that
// embed the library under their own name.
func WithProduct(product, version string) string {
	product = strings.TrimSpace(product)
	if product == "" {
		product = Product
	}
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf("%s/%s (%s; %s/%s)", product, version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
