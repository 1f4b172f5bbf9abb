package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type RoleEntry struct {
	Role        string
	Description string
}

// RoleCorpus reads the role -> job description file on every call.
type RoleCorpus interface {
	Entries() ([]RoleEntry, error)
	JobDescription(role string) (string, error)
}

type fileRoleCorpus struct {
	path string
}

func NewRoleCorpus(path string) RoleCorpus {
	return &fileRoleCorpus{path: path}
}

// Entries implements RoleCorpus. Entries keep file order, which fixes index row ids.
func (c *fileRoleCorpus) Entries() ([]RoleEntry, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: job descriptions %s: %w", ErrMissingData, c.path, err)
	}

	entries, err := decodeRoleEntries(data)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed job descriptions %s: %w", ErrMissingData, c.path, err)
	}

	return entries, nil
}

// JobDescription implements RoleCorpus.
func (c *fileRoleCorpus) JobDescription(role string) (string, error) {
	entries, err := c.Entries()
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		if entry.Role == role && entry.Description != "" {
			return entry.Description, nil
		}
	}

	return "", fmt.Errorf("%w: no job description for role %q", ErrMissingData, role)
}

func decodeRoleEntries(data []byte) ([]RoleEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected a JSON object of role -> description")
	}

	var entries []RoleEntry
	seen := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		role, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}

		var description string
		if err := dec.Decode(&description); err != nil {
			return nil, fmt.Errorf("role %q: %w", role, err)
		}

		// last duplicate wins, in the position of the first
		if i, dup := seen[role]; dup {
			entries[i].Description = description
			continue
		}
		seen[role] = len(entries)
		entries = append(entries, RoleEntry{Role: role, Description: description})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return entries, nil
}
