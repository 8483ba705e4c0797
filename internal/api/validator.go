package api

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"crypto_adda/internal/domain"
	"crypto_adda/internal/market"
)

const (
	maxInputLen = 100
	maxPerPage  = 100
)

// Validator turns raw path and query values into checked arguments.
type Validator struct {
	coinIDRegex *regexp.Regexp
}

var (
	validatorInstance *Validator
	validatorOnce     sync.Once
)

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		validatorInstance = &Validator{
			// provider ids: lower case, digits, dashes, dots, underscores
			coinIDRegex: regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`),
		}
	})
	return validatorInstance
}

// ValidateCoinID sanitizes and checks a coin id path parameter.
func (v *Validator) ValidateCoinID(id string) (string, error) {
	clean := strings.ToLower(v.sanitizeInput(id))
	if clean == "" {
		return "", errors.New("coin id is required")
	}
	if !v.coinIDRegex.MatchString(clean) {
		return "", errors.New("coin id may only contain lower case letters, digits, dots, dashes or underscores")
	}
	return clean, nil
}

// ValidateRange parses the chart range query value. Empty means the default window.
func (v *Validator) ValidateRange(s string) (domain.Window, error) {
	return domain.ParseWindow(v.sanitizeInput(s))
}

// ValidatePage parses a 1-based page number. Empty means page 1.
func (v *Validator) ValidatePage(s string) (int, error) {
	s = v.sanitizeInput(s)
	if s == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 0, errors.New("page must be a positive number")
	}
	return page, nil
}

// ValidatePerPage parses a page size. Empty means the coin table default.
func (v *Validator) ValidatePerPage(s string) (int, error) {
	s = v.sanitizeInput(s)
	if s == "" {
		return market.CoinsPageSize, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxPerPage {
		return 0, errors.New("per_page must be between 1 and 100")
	}
	return n, nil
}

// SanitizeSearch cleans the free text search query.
func (v *Validator) SanitizeSearch(s string) string {
	return v.sanitizeInput(s)
}

// sanitizeInput trims whitespace, drops control characters and caps the length.
func (v *Validator) sanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	if len(input) > maxInputLen {
		input = input[:maxInputLen]
	}
	return input
}
