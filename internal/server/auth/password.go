package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt at the given cost.
func HashPassword(password string, cost int) ([]byte, error) {
	if password == "" {
		return nil, errors.New("password is empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return h, nil
}

// ComparePassword reports whether password matches the bcrypt hash.
func ComparePassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

var (
	dummyMu     sync.Mutex
	dummyHashes = map[int][]byte{}
)

// CompareDummy burns the same bcrypt work as comparing against a hash made at
// cost. Login calls it for unknown usernames so response time does not reveal
// account existence.
func CompareDummy(password string, cost int) {
	_ = bcrypt.CompareHashAndPassword(dummyHashFor(cost), []byte(password))
}

func dummyHashFor(cost int) []byte {
	dummyMu.Lock()
	defer dummyMu.Unlock()

	h, ok := dummyHashes[cost]
	if !ok {
		var err error
		h, err = bcrypt.GenerateFromPassword([]byte("newsnow-dummy-password"), cost)
		if err != nil {
			h, _ = bcrypt.GenerateFromPassword([]byte("newsnow-dummy-password"), bcrypt.DefaultCost)
		}
		dummyHashes[cost] = h
	}
	return h
}
