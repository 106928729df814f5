// Package common defines shared constants and sentinel errors used across
// MedTrack components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Vault / cipher errors. Wrong passphrase and corrupted data are
	// intentionally indistinguishable: both surface ErrDecryptionFailed.
	ErrDecryptionFailed   = errors.New("decryption failed")
	ErrWeakPassphrase     = errors.New("passphrase is too short")
	ErrMigrationFailed    = errors.New("collection migration failed")
	ErrVaultLocked        = errors.New("vault is locked")
	ErrEncryptionDisabled = errors.New("encryption is not enabled")
	ErrorUnauthorized     = errors.New("unauthorized")

	// Schedule / reminder errors (recoverable, never fatal).
	ErrScheduleConfig = errors.New("invalid schedule configuration")
	ErrInvalidSnooze  = errors.New("invalid snooze duration")
)
