package gcp

import (
	"errors"
	"os"
	"strings"

	"google.golang.org/api/option"
)

var ErrMissingCredentials = errors.New("missing google service credentials (GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS_JSON)")

// CredentialsFromEnv returns inline JSON credentials if set, else the credentials file path.
func CredentialsFromEnv() string {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return creds
}

// ClientOptions turns a credentials value (inline JSON or a file path) into client options.
// An empty value yields no options, leaving application default credentials in charge.
func ClientOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

// RequiredClientOptions is ClientOptions for backends that must not fall
// back to ambient credentials.
func RequiredClientOptions(creds string) ([]option.ClientOption, error) {
	opts := ClientOptions(creds)
	if len(opts) == 0 {
		return nil, ErrMissingCredentials
	}
	return opts, nil
}
