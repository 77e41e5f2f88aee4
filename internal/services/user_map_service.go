package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alimgiray/prslo/internal/models"
)

// UserMap maps GitHub logins to directory aliases for presentation
type UserMap struct {
	byLogin map[string]string
	byAlias map[string]string
}

// NewUserMap builds a map from login to alias
func NewUserMap(aliases map[string]string) *UserMap {
	m := &UserMap{
		byLogin: make(map[string]string, len(aliases)),
		byAlias: make(map[string]string, len(aliases)),
	}
	for login, alias := range aliases {
		m.byLogin[login] = alias
		m.byAlias[alias] = login
	}
	return m
}

// LoadUserMap reads a github_username,ldap CSV file. A missing file yields an
// empty map so reports fall back to logins.
func LoadUserMap(path string) (*UserMap, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewUserMap(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open user map %s: %w", path, err)
	}
	defer f.Close()

	m, err := ParseUserMap(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user map %s: %w", path, err)
	}
	return m, nil
}

// ParseUserMap reads CSV with a github_username and ldap header
func ParseUserMap(r io.Reader) (*UserMap, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return NewUserMap(nil), nil
	}
	if err != nil {
		return nil, err
	}

	loginCol, aliasCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "github_username":
			loginCol = i
		case "ldap":
			aliasCol = i
		}
	}
	if loginCol < 0 || aliasCol < 0 {
		return nil, fmt.Errorf("header must contain github_username and ldap, got %v", header)
	}

	aliases := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if loginCol >= len(record) || aliasCol >= len(record) {
			continue
		}
		login := strings.TrimSpace(record[loginCol])
		alias := strings.TrimSpace(record[aliasCol])
		if login == "" || alias == "" {
			continue
		}
		aliases[login] = alias
	}
	return NewUserMap(aliases), nil
}

// Alias returns the alias of login, or login itself when unmapped
func (m *UserMap) Alias(login string) string {
	if alias, ok := m.byLogin[login]; ok {
		return alias
	}
	return login
}

// Has reports whether login is in the map
func (m *UserMap) Has(login string) bool {
	_, ok := m.byLogin[login]
	return ok
}

// Login resolves an alias back to its GitHub login
func (m *UserMap) Login(alias string) (string, error) {
	if login, ok := m.byAlias[alias]; ok {
		return login, nil
	}
	return "", fmt.Errorf("%w: %s", models.ErrUserNotMapped, alias)
}

// Resolve accepts either an alias or a login. Names prefixed with @ are
// always treated as logins.
func (m *UserMap) Resolve(name string) string {
	if strings.HasPrefix(name, "@") {
		return strings.TrimPrefix(name, "@")
	}
	if login, err := m.Login(name); err == nil {
		return login
	}
	return name
}

// Logins returns every mapped login, sorted
func (m *UserMap) Logins() []string {
	logins := make([]string, 0, len(m.byLogin))
	for login := range m.byLogin {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	return logins
}

// Len returns the number of mapped users
func (m *UserMap) Len() int {
	return len(m.byLogin)
}
