// Package util holds small string helpers shared by the oauthapp packages.
package util
