package cfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidServiceAccount = errors.New("invalid service account")

// ServiceAccount is the subset of a Google service-account key the jobs rely on.
// Raw keeps the original JSON so it can be handed to the Firestore client untouched.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`

	Raw []byte `json:"-"`
}

func ParseServiceAccount(raw string) (*ServiceAccount, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: FIREBASE_SERVICE_ACCOUNT is empty", ErrInvalidServiceAccount)
	}

	var sa ServiceAccount
	if err := json.Unmarshal([]byte(raw), &sa); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServiceAccount, err)
	}

	if sa.Type != "service_account" {
		return nil, fmt.Errorf("%w: unexpected type %q", ErrInvalidServiceAccount, sa.Type)
	}

	missing := make([]string, 0, 3)
	if sa.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if sa.ClientEmail == "" {
		missing = append(missing, "client_email")
	}
	if sa.PrivateKey == "" {
		missing = append(missing, "private_key")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidServiceAccount, strings.Join(missing, ", "))
	}

	sa.Raw = []byte(raw)

	return &sa, nil
}
