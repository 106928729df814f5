// Package services contains the application services of MedTrack: the
// encrypted record store (vault), medication CRUD and the notification
// center with its snooze state machine.
package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/cryptox"
	"github.com/dmitrijs2005/medtrack/internal/dbx"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/repositories/metadata"
	"github.com/dmitrijs2005/medtrack/internal/storage"
)

// Well-known collection names. Collections are logical slots of serialized
// text; external CRUD collaborators read and write plain values through the
// vault without knowing whether encryption is enabled.
const (
	CollectionMedications         = "medications"
	CollectionMedicationLogs      = "medication_logs"
	CollectionMeasurements        = "measurements"
	CollectionSymptoms            = "symptoms"
	CollectionActivities          = "activities"
	CollectionUserProfile         = "user_profile"
	CollectionActiveNotifications = "active_notifications"
	CollectionSnoozeHistory       = "notification_snooze_history"
)

// Metadata keys holding the encryption settings. The salt and verifier are
// safe to persist; the passphrase and anything derived from it never are.
const (
	metaEncryptionEnabled  = "encryption_enabled"
	metaEncryptionSalt     = "encryption_salt"
	metaEncryptionVerifier = "encryption_verifier"
)

// Vault is the encrypted record store. It wraps named collections and
// transparently encrypts/decrypts through the cipher when encryption is
// enabled. The passphrase is held only in volatile memory for the duration
// of a session and wiped on Lock.
type Vault struct {
	repos *storage.Repositories
	log   logging.Logger

	mu      sync.Mutex
	session []byte // passphrase copy; nil while locked
	enabled bool
}

// NewVault constructs a Vault and loads the persisted encryption flag.
func NewVault(ctx context.Context, repos *storage.Repositories, log logging.Logger) (*Vault, error) {
	v := &Vault{repos: repos, log: log}

	flag, err := repos.Metadata.Get(ctx, metaEncryptionEnabled)
	if err != nil {
		return nil, fmt.Errorf("failed to read encryption flag: %w", err)
	}
	v.enabled = string(flag) == "1"

	return v, nil
}

// Enabled reports whether encryption mode is on.
func (v *Vault) Enabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled
}

// Locked reports whether encryption is on but no session passphrase is cached.
func (v *Vault) Locked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled && v.session == nil
}

// Unlock verifies the passphrase against the stored verifier and caches it
// for the session. Verification is a constant-time comparison of key
// digests; the stored data is not touched.
func (v *Vault) Unlock(ctx context.Context, passphrase []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.enabled {
		return common.ErrEncryptionDisabled
	}

	salt, err := v.repos.Metadata.Get(ctx, metaEncryptionSalt)
	if err != nil {
		return fmt.Errorf("failed to read salt: %w", err)
	}
	verifier, err := v.repos.Metadata.Get(ctx, metaEncryptionVerifier)
	if err != nil {
		return fmt.Errorf("failed to read verifier: %w", err)
	}
	if salt == nil || verifier == nil {
		return common.ErrEncryptionDisabled
	}

	key := cryptox.DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(key)) == 0 {
		return common.ErrorUnauthorized
	}

	v.session = append([]byte(nil), passphrase...)
	return nil
}

// Lock wipes the session passphrase. Stored data stays encrypted; reads of
// encrypted collections fail with ErrVaultLocked until the next Unlock.
func (v *Vault) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()
	common.WipeByteArray(v.session)
	v.session = nil
}

// EnableEncryption turns encryption mode on: persists a fresh salt and
// verifier, caches the passphrase for the session and migrates every stored
// collection in place. Per-collection migration failures are isolated: one
// failing collection does not abort the others, and all failures are
// reported joined under ErrMigrationFailed.
func (v *Vault) EnableEncryption(ctx context.Context, passphrase []byte) error {
	if len(passphrase) < common.MinPassphraseLength {
		return common.ErrWeakPassphrase
	}

	v.mu.Lock()
	if v.enabled {
		v.mu.Unlock()
		return nil
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	key := cryptox.DeriveKey(passphrase, salt)
	verifier := cryptox.MakeVerifier(key)
	common.WipeByteArray(key)

	err := dbx.WithTx(ctx, v.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metadata.NewSQLiteRepository(tx)
		if err := meta.Set(ctx, metaEncryptionSalt, salt); err != nil {
			return err
		}
		if err := meta.Set(ctx, metaEncryptionVerifier, verifier); err != nil {
			return err
		}
		return meta.Set(ctx, metaEncryptionEnabled, []byte("1"))
	})
	if err != nil {
		v.mu.Unlock()
		return fmt.Errorf("failed to store encryption settings: %w", err)
	}

	v.session = append([]byte(nil), passphrase...)
	v.enabled = true
	v.mu.Unlock()

	return v.migrateAll(ctx)
}

// DisableEncryption decrypts every stored collection back to plaintext and
// clears the encryption settings. Requires an unlocked session.
func (v *Vault) DisableEncryption(ctx context.Context) error {
	v.mu.Lock()
	if !v.enabled {
		v.mu.Unlock()
		return nil
	}
	if v.session == nil {
		v.mu.Unlock()
		return common.ErrVaultLocked
	}
	v.mu.Unlock()

	keys, err := v.repos.Collections.Keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	var failures []error
	for _, key := range keys {
		if err := v.Unmigrate(ctx, key); err != nil {
			v.log.Error(ctx, "failed to unmigrate collection", "collection", key, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", key, err))
		}
	}
	if len(failures) > 0 {
		return errors.Join(common.ErrMigrationFailed, errors.Join(failures...))
	}

	err = dbx.WithTx(ctx, v.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metadata.NewSQLiteRepository(tx)
		for _, k := range []string{metaEncryptionEnabled, metaEncryptionSalt, metaEncryptionVerifier} {
			if err := meta.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear encryption settings: %w", err)
	}

	v.mu.Lock()
	common.WipeByteArray(v.session)
	v.session = nil
	v.enabled = false
	v.mu.Unlock()
	return nil
}

// migrateAll encrypts every currently stored collection in place.
func (v *Vault) migrateAll(ctx context.Context) error {
	keys, err := v.repos.Collections.Keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	var failures []error
	for _, key := range keys {
		if err := v.Migrate(ctx, key); err != nil {
			v.log.Error(ctx, "failed to migrate collection", "collection", key, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", key, err))
		}
	}
	if len(failures) > 0 {
		return errors.Join(common.ErrMigrationFailed, errors.Join(failures...))
	}
	return nil
}

// Migrate encrypts the named collection in place if it is currently stored
// as plaintext. Idempotent: absent or already-encrypted collections are
// left untouched.
func (v *Vault) Migrate(ctx context.Context, key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.enabled {
		return common.ErrEncryptionDisabled
	}
	if v.session == nil {
		return common.ErrVaultLocked
	}

	row, err := v.repos.Collections.Get(ctx, key)
	if err != nil {
		return err
	}
	if row == nil || row.Encrypted || cryptox.IsEncryptedBlob(row.Value) {
		return nil
	}

	blob, err := cryptox.Encrypt([]byte(row.Value), v.session)
	if err != nil {
		return err
	}
	return v.repos.Collections.Set(ctx, key, blob, true)
}

// Unmigrate reverses Migrate: decrypts the named collection back to
// plaintext. Requires the cached session passphrase.
func (v *Vault) Unmigrate(ctx context.Context, key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.session == nil {
		return common.ErrVaultLocked
	}

	row, err := v.repos.Collections.Get(ctx, key)
	if err != nil {
		return err
	}
	if row == nil || (!row.Encrypted && !cryptox.IsEncryptedBlob(row.Value)) {
		return nil
	}

	plaintext, err := cryptox.Decrypt(row.Value, v.session)
	if err != nil {
		return err
	}
	return v.repos.Collections.Set(ctx, key, string(plaintext), false)
}

// ReadJSON reads the named collection and unmarshals it into v. When nothing
// is stored, v is left untouched (the caller's preset value acts as the
// default) and found is false.
//
// A decryption failure surfaces ErrDecryptionFailed to the caller instead of
// silently falling back to the default: "no data" and "wrong passphrase"
// must stay distinguishable.
func (v *Vault) ReadJSON(ctx context.Context, key string, out any) (found bool, err error) {
	text, found, err := v.readText(ctx, key)
	if err != nil || !found {
		return false, err
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		// Unparseable plaintext falls back to the caller's default, matching
		// the read contract for corrupt non-encrypted data.
		v.log.Warn(ctx, "collection is not valid JSON, using default", "collection", key)
		return false, nil
	}
	return true, nil
}

// WriteJSON serializes v and stores it under the named collection,
// encrypting when encryption mode is on.
func (v *Vault) WriteJSON(ctx context.Context, key string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to serialize collection %s: %w", key, err)
	}
	return v.writeText(ctx, key, string(data))
}

func (v *Vault) readText(ctx context.Context, key string) (string, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	row, err := v.repos.Collections.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if row == nil {
		return "", false, nil
	}

	if v.enabled && (row.Encrypted || cryptox.IsEncryptedBlob(row.Value)) {
		if v.session == nil {
			return "", false, fmt.Errorf("collection %s: %w", key, common.ErrVaultLocked)
		}
		plaintext, err := cryptox.Decrypt(row.Value, v.session)
		if err != nil {
			return "", false, fmt.Errorf("collection %s: %w", key, err)
		}
		return string(plaintext), true, nil
	}

	return row.Value, true, nil
}

func (v *Vault) writeText(ctx context.Context, key, text string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.enabled {
		return v.repos.Collections.Set(ctx, key, text, false)
	}
	if v.session == nil {
		return fmt.Errorf("collection %s: %w", key, common.ErrVaultLocked)
	}

	blob, err := cryptox.Encrypt([]byte(text), v.session)
	if err != nil {
		return fmt.Errorf("collection %s: %w", key, err)
	}
	return v.repos.Collections.Set(ctx, key, blob, true)
}
