package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Parse decodes a catalog document. Commands and examples keep the order in
// which they appear in the document; optional fields are resolved to their
// empty defaults here so consumers never re-check them.
func Parse(data []byte) (*Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedCatalog)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: document is not an object", ErrMalformedCatalog)
	}

	commandsNode := root.Get("commands")
	if !commandsNode.IsObject() {
		return nil, fmt.Errorf("%w: missing \"commands\" object", ErrMalformedCatalog)
	}

	commands := make([]Command, 0)
	positions := make(map[string]int)

	var parseErr error
	commandsNode.ForEach(func(key, value gjson.Result) bool {
		cmd, err := parseCommand(key.String(), value)
		if err != nil {
			parseErr = err
			return false
		}

		// A repeated name replaces the earlier definition in place.
		if pos, ok := positions[cmd.Name]; ok {
			commands[pos] = cmd
			return true
		}
		positions[cmd.Name] = len(commands)
		commands = append(commands, cmd)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return &Catalog{
		Commands: commands,
		Domains:  domainsOf(commands),
	}, nil
}

func parseCommand(name string, conf gjson.Result) (Command, error) {
	if !conf.IsObject() {
		return Command{}, fmt.Errorf("%w: command %q is not an object", ErrMalformedCatalog, name)
	}

	domainName := conf.Get("meta.domain.name")
	if domainName.Type != gjson.String {
		return Command{}, fmt.Errorf("%w: command %q has no domain name", ErrMalformedCatalog, name)
	}

	cmd := Command{
		Name:   name,
		Method: conf.Get("method").String(),
		Path:   conf.Get("path_conf.path").String(),
		Domain: Domain{
			ID:   conf.Get("meta.domain.id").String(),
			Name: domainName.String(),
		},
		AccessList:       parseAccessList(conf.Get("access.access_list")),
		Title:            conf.Get("meta.title").String(),
		Description:      conf.Get("meta.description").String(),
		InputQuerySchema: rawOf(conf.Get("schemas.input_query.schema")),
		InputBodySchema:  rawOf(conf.Get("schemas.input_body.schema")),
		OutputSchema:     rawOf(conf.Get("schemas.output.schema")),
		Examples:         parseExamples(conf.Get("examples")),
	}

	return cmd, nil
}

func parseAccessList(node gjson.Result) []string {
	if !node.IsArray() {
		return nil
	}

	roles := make([]string, 0)
	node.ForEach(func(_, role gjson.Result) bool {
		roles = append(roles, role.String())
		return true
	})
	return roles
}

// parseExamples accepts the keyed form {"name": {...}} as well as a list of
// examples that carry their own "name".
func parseExamples(node gjson.Result) []Example {
	examples := make([]Example, 0)

	switch {
	case node.IsObject():
		node.ForEach(func(key, value gjson.Result) bool {
			examples = append(examples, parseExample(key.String(), value))
			return true
		})
	case node.IsArray():
		node.ForEach(func(_, value gjson.Result) bool {
			examples = append(examples, parseExample(value.Get("name").String(), value))
			return true
		})
	}

	return examples
}

func parseExample(name string, node gjson.Result) Example {
	return Example{
		Name: name,
		Request: Request{
			Path:    node.Get("request.path").String(),
			Headers: parseHeaders(node.Get("request.headers")),
			Content: rawOf(node.Get("request.content")),
		},
		Response: Response{
			Content: rawOf(node.Get("response.content")),
		},
	}
}

func parseHeaders(node gjson.Result) map[string]string {
	if !node.IsObject() {
		return nil
	}

	headers := make(map[string]string)
	node.ForEach(func(key, value gjson.Result) bool {
		headers[key.String()] = value.String()
		return true
	})
	return headers
}

// rawOf returns the raw JSON of a node, or nil when it is absent or null
func rawOf(node gjson.Result) json.RawMessage {
	if !node.Exists() || node.Type == gjson.Null {
		return nil
	}
	return json.RawMessage(node.Raw)
}
