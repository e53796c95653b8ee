// Package client contains Cobra CLI commands that drive a running logchain
// instance over its HTTP API.
package client
