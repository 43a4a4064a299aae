//go:build !js

package rubeview

// DefaultBaseURL returns the address demos/sceneserver listens on by
// default.
func DefaultBaseURL() string {
	return "http://localhost:8080"
}
