package crawlserver

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/anatolykoptev/go_crawl/internal/crawler"
	"github.com/anatolykoptev/go_crawl/internal/engine"
	"github.com/anatolykoptev/go_crawl/internal/profile"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var errNoProfiles = errors.New("profiles are not configured")

func registerProfileSave(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "profile_save",
		Description: "Saves a named browsing profile: cookies and extra headers that crawl tools send when the profile is selected. Saving a profile under an existing name replaces it. Use this to crawl pages behind a login by capturing the session cookies once.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ProfileSaveInput) (*mcp.CallToolResult, engine.ProfileSaveOutput, error) {
		if deps.Profiles == nil {
			return nil, engine.ProfileSaveOutput{}, errNoProfiles
		}
		if input.Name == "" {
			return nil, engine.ProfileSaveOutput{}, fmt.Errorf("name is required")
		}

		cookies := make([]profile.Cookie, 0, len(input.Cookies))
		for _, c := range input.Cookies {
			cookies = append(cookies, profile.Cookie(c))
		}
		p := &profile.Profile{Name: input.Name, Cookies: cookies, Headers: input.Headers}
		if err := deps.Profiles.Save(p); err != nil {
			return nil, engine.ProfileSaveOutput{}, err
		}
		return nil, engine.ProfileSaveOutput{
			Name:    input.Name,
			Cookies: len(cookies),
			Headers: len(input.Headers),
		}, nil
	})
}

func registerProfileList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "profile_list",
		Description: "Lists the names of all saved browsing profiles.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, engine.ProfileListOutput, error) {
		if deps.Profiles == nil {
			return nil, engine.ProfileListOutput{}, errNoProfiles
		}
		names, err := deps.Profiles.List()
		if err != nil {
			return nil, engine.ProfileListOutput{}, err
		}
		if names == nil {
			names = []string{}
		}
		return nil, engine.ProfileListOutput{Profiles: names, Count: len(names)}, nil
	})
}

func registerProfileDelete(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "profile_delete",
		Description: "Deletes a saved browsing profile by name.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ProfileNameInput) (*mcp.CallToolResult, engine.ProfileDeleteOutput, error) {
		if deps.Profiles == nil {
			return nil, engine.ProfileDeleteOutput{}, errNoProfiles
		}
		if input.Name == "" {
			return nil, engine.ProfileDeleteOutput{}, fmt.Errorf("name is required")
		}
		if err := deps.Profiles.Delete(input.Name); err != nil {
			return nil, engine.ProfileDeleteOutput{}, err
		}
		return nil, engine.ProfileDeleteOutput{Name: input.Name, Deleted: true}, nil
	})
}

func registerProfileTest(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "profile_test",
		Description: "Fetches a URL with a saved profile's cookies and headers and reports the HTTP status, page title and content size. Use it to check whether a captured session still works. The fetch bypasses the page cache.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ProfileTestInput) (*mcp.CallToolResult, engine.ProfileTestOutput, error) {
		if deps.Profiles == nil {
			return nil, engine.ProfileTestOutput{}, errNoProfiles
		}
		if input.Name == "" {
			return nil, engine.ProfileTestOutput{}, fmt.Errorf("name is required")
		}
		if input.URL == "" {
			return nil, engine.ProfileTestOutput{}, fmt.Errorf("url is required")
		}

		page, err := deps.Crawler.Page(ctx, input.URL, crawler.RunConfig{
			CacheMode: crawler.CacheDisabled,
			Profile:   input.Name,
		})
		if err != nil {
			return nil, engine.ProfileTestOutput{}, err
		}
		return nil, engine.ProfileTestOutput{
			URL:    page.URL,
			Status: page.Status,
			Title:  page.Title,
			Chars:  utf8.RuneCountInString(page.Markdown),
		}, nil
	})
}
