package storage

import "errors"

// ErrNotFound is returned when a referenced chapter, wallet, tier or
// subscription does not exist.
var ErrNotFound = errors.New("not found")

// ErrInsufficientFunds is returned when neither kana balance covers a spend.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAlreadyUnlocked is returned when a chapter is already in the user's
// unlocked set.
var ErrAlreadyUnlocked = errors.New("chapter already unlocked")

// ErrWalletExists is returned when creating a wallet for a user that already
// has one.
var ErrWalletExists = errors.New("wallet already exists")

// ErrEventAlreadyProcessed is returned when a webhook event id has been
// recorded before. Duplicate provider deliveries surface as this error.
var ErrEventAlreadyProcessed = errors.New("event already processed")

// ErrVersionConflict is returned when an optimistic-lock condition fails,
// e.g. two writers raced on the same wallet.
var ErrVersionConflict = errors.New("version conflict")
