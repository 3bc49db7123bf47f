package account

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"hospitaladmin/pkg/policy"
)

//go:embed accounts.yaml
var defaultAccounts []byte

// Entry is one account as written in an accounts source. Exactly one of
// Password and PasswordHash is expected; a plaintext password is hashed
// when the registry is built.
type Entry struct {
	ID           string      `yaml:"id"`
	Username     string      `yaml:"username"`
	Name         string      `yaml:"name"`
	Email        string      `yaml:"email"`
	Role         policy.Role `yaml:"role"`
	Password     string      `yaml:"password,omitempty"`
	PasswordHash string      `yaml:"password_hash,omitempty"`
}

type document struct {
	Accounts []Entry `yaml:"accounts"`
}

func ParseEntries(r io.Reader) ([]Entry, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return doc.Accounts, nil
}

func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open accounts file: %w", err)
	}
	defer f.Close()

	return ParseEntries(f)
}

// DefaultEntries returns the seed accounts compiled into the binary.
func DefaultEntries() []Entry {
	entries, err := ParseEntries(bytes.NewReader(defaultAccounts))
	if err != nil {
		panic(fmt.Sprintf("embedded accounts: %v", err))
	}
	return entries
}
