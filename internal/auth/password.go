package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// bcrypt rejects longer inputs.
const maxPasswordBytes = 72

// ValidatePassword returns one message per violated rule, or nil.
func ValidatePassword(password string) []string {
	var problems []string
	if len([]rune(password)) < 8 {
		problems = append(problems, "password must be at least 8 characters long")
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, "password must be at most 72 bytes")
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	if !upper {
		problems = append(problems, "password must contain an uppercase letter")
	}
	if !lower {
		problems = append(problems, "password must contain a lowercase letter")
	}
	if !digit {
		problems = append(problems, "password must contain a digit")
	}
	if !symbol {
		problems = append(problems, "password must contain a symbol")
	}
	return problems
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
