package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/benchquest/pkg/journal"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerProtocolsResource(srv, svc)
	registerProtocolTemplate(srv, svc)
	registerJournalTemplate(srv, svc)
	registerStatusResource(srv, svc)
}

func registerProtocolsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"benchquest://protocols",
		"Protocols",
		mcp.WithResourceDescription("All saved research protocols."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := svc.ListProtocols()
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"protocols": list,
			"count":     len(list),
		})
	})
}

func registerProtocolTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"benchquest://protocols/{id}",
		"Protocol",
		mcp.WithTemplateDescription("One protocol with its widgets."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := templateArg(request, "id")
		if id == "" {
			return nil, fmt.Errorf("protocol id is required")
		}
		p, err := svc.GetProtocol(id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"protocol": p})
	})
}

func registerJournalTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"benchquest://journal/{date}",
		"Journal Day",
		mcp.WithTemplateDescription("Journal logs for one YYYY-MM-DD day."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		date := templateArg(request, "date")
		if date == "" {
			return nil, fmt.Errorf("date is required")
		}
		if err := svc.ready(); err != nil {
			return nil, err
		}
		e, ok := svc.Session.Journal.Entry(date)
		if !ok {
			e = journal.Entry{Date: date, Logs: []string{}}
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"entry": e})
	})
}

func registerStatusResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"benchquest://status",
		"Status",
		mcp.WithResourceDescription("Score, level, companion and today's activity."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		if err := svc.ready(); err != nil {
			return nil, err
		}
		st := svc.Session.Status(svc.Session.Journal.Now())
		return encodeResourceJSON(request.Params.URI, st)
	})
}

// templateArg reads a URI template variable. Depending on the transport the
// value arrives as a string or a one element slice.
func templateArg(request mcp.ReadResourceRequest, name string) string {
	switch v := request.Params.Arguments[name].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
