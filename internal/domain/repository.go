package domain

import "strings"

// RepositoryID identifies a repository as <organization>/<repository>.
type RepositoryID struct {
	Owner string
	Name  string
}

// ParseRepositoryID splits s on its single "/" separator.
func ParseRepositoryID(s string) (RepositoryID, error) {
	if strings.Count(s, "/") != 1 {
		return RepositoryID{}, NewInputError("repository", s, "must be '<organization>/<repository>'")
	}
	owner, name, _ := strings.Cut(s, "/")
	if owner == "" || name == "" {
		return RepositoryID{}, NewInputError("repository", s, "must be '<organization>/<repository>'")
	}
	return RepositoryID{Owner: owner, Name: name}, nil
}

func (r RepositoryID) String() string {
	return r.Owner + "/" + r.Name
}
