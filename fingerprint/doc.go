// Package fingerprint derives stable, content-addressed cache keys.
//
// It provides a running SHA-256 Hasher with canonical encodings for
// primitive values, and the Fingerprintable interface that query types
// implement to fold their type identity and parameters into a Digest.
// Equal (type, parameters) pairs produce the same Digest within and
// across process runs.
package fingerprint
