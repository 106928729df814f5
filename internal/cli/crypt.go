package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/medtrack/internal/common"
)

// getPassword is an indirection used to facilitate testing.
// It points to the interactive input helper and can be swapped in tests.
var getPassword = GetPassword

// Unlock prompts for the passphrase and opens the vault.
//
// On success it prints "Unlocked." and returns nil. The passphrase byte
// slice is securely wiped before returning.
func (a *App) Unlock(ctx context.Context) error {
	passphrase, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	if err := a.vault.Unlock(ctx, passphrase); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			printlnFn("Wrong passphrase.")
		} else {
			printlnFn(err.Error())
		}
		return err
	}

	printlnFn("Unlocked.")
	return nil
}

// Lock drops the session passphrase. Encrypted data stays on disk and
// requires unlock before the next read.
func (a *App) Lock(ctx context.Context) error {
	if !a.vault.Enabled() {
		printlnFn("Encryption is not enabled.")
		return nil
	}
	a.vault.Lock()
	printlnFn("Locked.")
	return nil
}

// EncryptOn prompts for a new passphrase (twice) and enables encryption,
// migrating all stored data in place.
func (a *App) EncryptOn(ctx context.Context) error {
	if a.vault.Enabled() {
		printlnFn("Encryption is already enabled.")
		return nil
	}

	passphrase, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	confirm, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(passphrase) != string(confirm) {
		printlnFn("Passphrases do not match.")
		return common.ErrorUnauthorized
	}

	if err := a.vault.EnableEncryption(ctx, passphrase); err != nil {
		if errors.Is(err, common.ErrWeakPassphrase) {
			printlnFn(fmt.Sprintf("Passphrase must be at least %d characters.", common.MinPassphraseLength))
		} else {
			printlnFn(err.Error())
		}
		return err
	}

	printlnFn("Encryption enabled. Keep the passphrase safe: data cannot be recovered without it.")
	return nil
}

// EncryptOff decrypts all stored data back to plaintext and disables
// encryption. Requires an unlocked vault.
func (a *App) EncryptOff(ctx context.Context) error {
	if !a.vault.Enabled() {
		printlnFn("Encryption is not enabled.")
		return nil
	}

	if err := a.vault.DisableEncryption(ctx); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Encryption disabled.")
	return nil
}
