package admin

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordLower   = "abcdefghijklmnopqrstuvwxyz"
	passwordUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordDigits  = "0123456789"
	passwordSpecial = "!@#$%^&*"
)

// GeneratePassword produces a random password containing at least one
// lowercase, uppercase, digit and special character. Lengths below 8
// are raised to 12.
func GeneratePassword(length int) string {
	if length < 8 {
		length = 12
	}

	all := passwordLower + passwordUpper + passwordDigits + passwordSpecial
	chars := []byte{
		passwordLower[randomIndex(len(passwordLower))],
		passwordUpper[randomIndex(len(passwordUpper))],
		passwordDigits[randomIndex(len(passwordDigits))],
		passwordSpecial[randomIndex(len(passwordSpecial))],
	}
	for len(chars) < length {
		chars = append(chars, all[randomIndex(len(all))])
	}

	// Fisher-Yates so the mandatory characters are not predictable
	// prefix positions.
	for i := len(chars) - 1; i > 0; i-- {
		j := randomIndex(i + 1)
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars)
}

func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the platform source is broken;
		// a password generator cannot proceed without it.
		panic(err)
	}
	return int(v.Int64())
}
