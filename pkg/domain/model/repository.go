package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Repository identifies a GitHub repository
type Repository struct {
	Owner string
	Name  string
}

// ParseRepository parses "owner/name" as provided by GITHUB_REPOSITORY
func ParseRepository(s string) (Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, goerr.Wrap(ErrInvalidRepository, "failed to parse repository", goerr.V("repository", s))
	}
	return Repository{Owner: owner, Name: name}, nil
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether the repository is unset
func (r Repository) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}
