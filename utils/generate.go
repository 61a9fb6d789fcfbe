package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// projectIDAlphabet is URL safe; 64 characters so random bytes map uniformly.
const projectIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// passwordAlphabet excludes visually ambiguous characters (l, I, 1, 0, O) so
// students can reliably transcribe the password from a printout.
const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ProjectIDLength is the fixed length of public project identifiers.
const ProjectIDLength = 12

// PasswordLength is the default generated password length.
const PasswordLength = 8

// GenerateProjectID returns a cryptographically random URL-safe identifier.
// Collision resistance comes from the keyspace (64^12); actual uniqueness is
// enforced by the database constraint on project_id.
func GenerateProjectID(length int) (string, error) {
	if length <= 0 {
		length = ProjectIDLength
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = projectIDAlphabet[b[i]&63]
	}
	return string(b), nil
}

// GeneratePassword returns a random password from the unambiguous alphabet.
// crypto/rand only: the password is the sole credential for private reports.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		length = PasswordLength
	}
	out := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("random index: %w", err)
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
