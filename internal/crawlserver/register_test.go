package crawlserver

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Registration parses the hand-written manual tool schema and derives the
// rest from the input structs; any malformed schema shows up here as a panic.
func TestRegisterTools(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "go_crawl-test", Version: "0.0.0"}, nil)
	RegisterTools(server, Deps{})
}
