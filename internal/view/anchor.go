package view

import (
	"regexp"
	"strconv"
	"strings"
)

// Section suffixes appended to a command or example anchor
const (
	SectionTitle          = "-title"
	SectionInputQuery     = "-input-query"
	SectionInputBody      = "-input-body"
	SectionOutputBody     = "-output-body"
	SectionRequestHeaders = "-request-headers"
	SectionRequestBody    = "-request-body"
	SectionResponseBody   = "-response-body"
)

const anchorSeparator = "__"

var whitespacePattern = regexp.MustCompile(`\s+`)

// DomainAnchor builds the anchor of a domain section. Domain names need not
// be URL safe; runs of whitespace become a single "-".
// Example: DomainAnchor("Account Management") returns "domain-Account-Management"
func DomainAnchor(domainName string) string {
	return "domain-" + whitespacePattern.ReplaceAllString(domainName, "-")
}

// CommandAnchor builds the anchor prefix of the idx-th command of a domain
func CommandAnchor(domainName string, idx int) string {
	return DomainAnchor(domainName) + anchorSeparator + strconv.Itoa(idx) + anchorSeparator
}

// ExampleAnchor builds the anchor prefix of an example within a command
func ExampleAnchor(domainName string, idx, exampleIdx int) string {
	return CommandAnchor(domainName, idx) + strconv.Itoa(exampleIdx) + anchorSeparator
}

// Element locates a selected anchor inside a rendered view. Command and
// Example are -1 when the anchor does not reach that deep.
type Element struct {
	DomainAnchor string
	Command      int
	Example      int
}

// ParseElement splits an anchor produced by the helpers above so a renderer
// can expand the sections leading to it.
func ParseElement(anchor string) Element {
	el := Element{Command: -1, Example: -1}
	if anchor == "" {
		return el
	}

	parts := strings.Split(anchor, anchorSeparator)
	el.DomainAnchor = parts[0]

	if len(parts) >= 2 {
		if idx, err := strconv.Atoi(parts[1]); err == nil && idx >= 0 {
			el.Command = idx
		}
	}
	if el.Command >= 0 && len(parts) >= 3 {
		if idx, err := strconv.Atoi(parts[2]); err == nil && idx >= 0 {
			el.Example = idx
		}
	}

	return el
}
