package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidAddress = errors.New("invalid address or ENS name")
	ErrEmptyName      = errors.New("name is required")
)

var ensLabel = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateAddress accepts a hex address or an ENS name. Hex addresses come
// back checksummed, ENS names lowercased.
func ValidateAddress(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if !common.IsHexAddress(s) {
			return "", fmt.Errorf("%w: %q", ErrInvalidAddress, input)
		}
		return common.HexToAddress(s).Hex(), nil
	}

	name := strings.ToLower(s)
	if !strings.HasSuffix(name, ".eth") {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, input)
	}
	for _, label := range strings.Split(name, ".") {
		if !ensLabel.MatchString(label) {
			return "", fmt.Errorf("%w: bad label %q", ErrInvalidAddress, label)
		}
	}
	return name, nil
}

// ValidateName trims a display name and rejects empty ones.
func ValidateName(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrEmptyName
	}
	return s, nil
}
