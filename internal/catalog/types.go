// Package catalog models a machine-readable command catalog and loads it
// from an entry-point URI.
package catalog

import (
	"encoding/json"
	"slices"
	"sort"
)

// Command is one documented API operation
type Command struct {
	// Name is the catalog key; unique across a catalog
	Name string

	// Method is the HTTP verb
	Method string

	// Path may contain path parameters
	Path string

	Domain Domain

	// AccessList is nil when the catalog declares no access restriction
	AccessList []string

	Title       string
	Description string

	// Schemas are kept as raw JSON; nil means absent
	InputQuerySchema json.RawMessage
	InputBodySchema  json.RawMessage
	OutputSchema     json.RawMessage

	Examples []Example
}

// AccessRestricted reports whether the catalog declared an access list
func (c Command) AccessRestricted() bool {
	return c.AccessList != nil
}

// HasRole reports whether role literally appears in the access list.
// Unrestricted commands match no specific role.
func (c Command) HasRole(role string) bool {
	return slices.Contains(c.AccessList, role)
}

// Example is one request/response sample for a command
type Example struct {
	Name     string
	Request  Request
	Response Response
}

// Request is the request half of an example
type Request struct {
	Path string

	// Headers is nil when the example declares none
	Headers map[string]string

	// Content is nil when the example carries no payload
	Content json.RawMessage
}

// Response is the response half of an example
type Response struct {
	Content json.RawMessage
}

// Domain is a named grouping of commands
type Domain struct {
	ID   string
	Name string
}

// Catalog is the full set of commands fetched from one entry-point URI
type Catalog struct {
	// Commands in document order
	Commands []Command

	// Domains in order of first appearance; the id is the one carried by the
	// first command seen for that domain name
	Domains []Domain
}

// DomainID returns the id recorded for a domain name
func (c *Catalog) DomainID(name string) (string, bool) {
	for _, d := range c.Domains {
		if d.Name == name {
			return d.ID, true
		}
	}
	return "", false
}

// Roles returns the sorted set of roles named by any command
func (c *Catalog) Roles() []string {
	return Roles(c.Commands)
}

// Roles returns the sorted set of roles named by the given commands
func Roles(commands []Command) []string {
	seen := make(map[string]struct{})
	for _, cmd := range commands {
		for _, role := range cmd.AccessList {
			seen[role] = struct{}{}
		}
	}

	roles := make([]string, 0, len(seen))
	for role := range seen {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// domainsOf derives the ordered domain list, first-seen id winning
func domainsOf(commands []Command) []Domain {
	seen := make(map[string]bool)
	domains := make([]Domain, 0)
	for _, cmd := range commands {
		if seen[cmd.Domain.Name] {
			continue
		}
		seen[cmd.Domain.Name] = true
		domains = append(domains, cmd.Domain)
	}
	return domains
}
