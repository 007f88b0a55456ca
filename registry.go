package main

import (
	"fmt"
	"sort"
	"strings"
)

// The registry maps the small closed set of recognized people to the place
// their task table lives in the spreadsheet.  It is plain configuration data
// passed in at construction; tests supply synthetic identities the same way
// main supplies the production ones.

// TableLocation describes where an identity's table starts.  Exactly one
// variant is set: a literal start row (StartRow > 0), or a search range
// within which the header row is found by scanning cell contents.
type TableLocation struct {
	StartRow    int
	SearchStart int
	SearchEnd   int
}

func (l TableLocation) fixed() bool { return l.StartRow > 0 }

// Identity is one registered person: the canonical Telegram handle (without
// the @), zero or more aliases, and an optional shortcut command that
// implicitly targets this person (e.g. /he).
type Identity struct {
	Handle   string
	Aliases  []string
	Shortcut string
	Location TableLocation
}

// UnknownIdentityError reports a token that matched nothing in the registry.
// It carries the full set of valid handles and aliases so the reply can tell
// the human caller what would have worked.
type UnknownIdentityError struct {
	Token string
	Known []string
}

func (e *UnknownIdentityError) Error() string {
	return fmt.Sprintf("unknown identity %q (known: %s)", e.Token, strings.Join(e.Known, ", "))
}

type Registry struct {
	identities []Identity
}

func NewRegistry(identities []Identity) *Registry {
	return &Registry{identities: identities}
}

// Resolve maps a mention or alias token to a registered identity.  A leading
// @ is stripped.  Handles match case-sensitively first, then aliases match
// case-insensitively.
func (r *Registry) Resolve(token string) (Identity, error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "@")
	for _, id := range r.identities {
		if id.Handle == token {
			return id, nil
		}
	}
	for _, id := range r.identities {
		for _, a := range id.Aliases {
			if strings.EqualFold(a, token) {
				return id, nil
			}
		}
	}
	return Identity{}, &UnknownIdentityError{Token: token, Known: r.knownTokens()}
}

// ResolveSelf matches the caller's own chat handle, case-insensitively.
// Used by the "me ..." self-assign form, where the handle comes from
// Telegram rather than from typed input.
func (r *Registry) ResolveSelf(handle string) (Identity, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	for _, id := range r.identities {
		if strings.EqualFold(id.Handle, handle) {
			return id, nil
		}
	}
	return Identity{}, &UnknownIdentityError{Token: handle, Known: r.knownTokens()}
}

// Shortcut maps a slash-command name to the identity that claimed it.
func (r *Registry) Shortcut(command string) (Identity, bool) {
	for _, id := range r.identities {
		if id.Shortcut != "" && strings.EqualFold(id.Shortcut, command) {
			return id, true
		}
	}
	return Identity{}, false
}

// Others returns every registered identity except the named one.  The
// locator uses this to find the next table's start when computing bounds.
func (r *Registry) Others(handle string) []Identity {
	var out []Identity
	for _, id := range r.identities {
		if id.Handle != handle {
			out = append(out, id)
		}
	}
	return out
}

func (r *Registry) knownTokens() []string {
	var known []string
	for _, id := range r.identities {
		known = append(known, "@"+id.Handle)
		known = append(known, id.Aliases...)
	}
	sort.Strings(known)
	return known
}
