// Package common contains shared constants and sentinel errors used across
// MedTrack components.
package common

// MinPassphraseLength is the minimum accepted passphrase length, in bytes.
// Anything shorter is rejected with ErrWeakPassphrase.
const MinPassphraseLength = 6
