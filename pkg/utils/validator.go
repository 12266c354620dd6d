package utils

import (
	"fmt"
	"strings"
)

func ValidateNodeID(id string) error {
	if id == "" {
		return fmt.Errorf("node id must not be empty")
	}

	if len(id) > 63 {
		return fmt.Errorf("node id must not exceed 63 characters")
	}

	for _, char := range id {
		if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') || char == '-') {
			return fmt.Errorf("node id may only contain lowercase letters, digits and hyphens: %s", id)
		}
	}

	if strings.HasPrefix(id, "-") || strings.HasSuffix(id, "-") {
		return fmt.Errorf("node id must not start or end with a hyphen: %s", id)
	}

	return nil
}

func ValidateHost(host string) error {
	if strings.TrimSpace(host) == "" {
		return fmt.Errorf("host must not be empty")
	}
	return nil
}

func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %d", port)
	}
	return nil
}

func ValidatePrivateKey(privateKey string) error {
	if privateKey == "" {
		return fmt.Errorf("private key must not be empty")
	}

	if !strings.Contains(privateKey, "BEGIN") || !strings.Contains(privateKey, "END") {
		return fmt.Errorf("private key must be PEM encoded")
	}

	return nil
}
