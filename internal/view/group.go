// Package view derives what a renderer needs from a filter state: commands
// grouped by domain, stable anchors, and display-ready command fields.
package view

import (
	"sort"

	"github.com/conduit-lang/apidocs/internal/catalog"
)

// DomainGroup is one domain section of a rendered view
type DomainGroup struct {
	Name     string
	Anchor   string
	Commands []catalog.Command
}

// GroupByDomain groups commands by domain name. Groups are ordered by name;
// commands keep their relative order within a group.
func GroupByDomain(commands []catalog.Command) []DomainGroup {
	byName := make(map[string][]catalog.Command)
	for _, cmd := range commands {
		byName[cmd.Domain.Name] = append(byName[cmd.Domain.Name], cmd)
	}

	domainNames := make([]string, 0, len(byName))
	for name := range byName {
		domainNames = append(domainNames, name)
	}
	sort.Strings(domainNames)

	groups := make([]DomainGroup, 0, len(domainNames))
	for _, name := range domainNames {
		groups = append(groups, DomainGroup{
			Name:     name,
			Anchor:   DomainAnchor(name),
			Commands: byName[name],
		})
	}
	return groups
}
