package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// RoleMapping persists the index row id -> role name companion file ({"0": "Role", ...}).
type RoleMapping interface {
	Load() (map[string]string, error)
	Save(roles []string) error
}

type fileRoleMapping struct {
	path string
}

func NewRoleMapping(path string) RoleMapping {
	return &fileRoleMapping{path: path}
}

// Load implements RoleMapping.
func (m *fileRoleMapping) Load() (map[string]string, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: role mapping %s not found, build the index first", ErrMissingData, m.path)
		}
		return nil, fmt.Errorf("%w: role mapping %s: %w", ErrMissingData, m.path, err)
	}

	var roles map[string]string
	if err := json.Unmarshal(data, &roles); err != nil {
		return nil, fmt.Errorf("%w: malformed role mapping %s: %w", ErrMissingData, m.path, err)
	}

	return roles, nil
}

// Save implements RoleMapping. Ids are the positions in roles.
func (m *fileRoleMapping) Save(roles []string) error {
	mapping := make(map[string]string, len(roles))
	for i, role := range roles {
		mapping[strconv.Itoa(i)] = role
	}

	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode role mapping: %w", err)
	}

	return writeFileAtomic(m.path, data)
}

// writeFileAtomic replaces path so concurrent readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
