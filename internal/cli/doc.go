// Package cli provides the interactive MedTrack command-line client.
//
// It wires configuration, local storage, the encrypted vault and an
// interactive REPL, and runs the reminder engine and snooze sweeper in the
// background while the REPL is open.
//
// Key features:
//   - Medication management: add, list, delete
//   - Today's dose schedule
//   - Due-dose notifications with snooze / dismiss / taken
//   - Snooze audit history
//   - Optional passphrase encryption of all stored data
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
