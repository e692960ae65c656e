package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of the plaintext password.  A cost
// below bcrypt's minimum falls back to bcrypt.DefaultCost, so a missing
// BCRYPT_COST setting never silently weakens stored credentials; tests
// pass bcrypt.MinCost explicitly to keep hashing fast.
func HashPassword(plain string, cost int) (string, error) {
    if cost < bcrypt.MinCost {
        cost = bcrypt.DefaultCost
    }
    hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// Malformed hashes and wrong passwords both come back false; login answers
// the same 401 either way.
func VerifyPassword(hash, plain string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
