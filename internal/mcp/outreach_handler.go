package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ticket-ai/outreach-eval/internal/agent"
	"github.com/ticket-ai/outreach-eval/internal/mailer"
	"github.com/ticket-ai/outreach-eval/internal/server"
)

func registerOutreachTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	generateTool := mcp.NewTool("generate_outreach",
		mcp.WithDescription("Generate a personalized outreach message for a customer, optionally delivering it by email"),
		mcp.WithString("request",
			mcp.Required(),
			mcp.Description("What the outreach should accomplish (e.g. 'Follow up on the delayed order')"),
		),
		mcp.WithString("customer_id",
			mcp.Description("Customer to personalize for; context is assembled from the CRM"),
		),
		mcp.WithString("email_to",
			mcp.Description("Recipient address; when set the message is sent by email"),
		),
		mcp.WithString("email_subject",
			mcp.Description("Email subject (required when email_to is set)"),
		),
	)
	s.AddTool(generateTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGenerateOutreach(ctx, request, sc)
	})

	return nil
}

func handleGenerateOutreach(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req, ok := args["request"].(string)
	if !ok || req == "" {
		return mcp.NewToolResultError("request is required"), nil
	}
	customerID, _ := args["customer_id"].(string)
	emailTo, _ := args["email_to"].(string)
	emailSubject, _ := args["email_subject"].(string)

	if emailTo != "" {
		if sc.Mailer == nil {
			return mcp.NewToolResultError("email delivery is not configured"), nil
		}
		if emailSubject == "" {
			return mcp.NewToolResultError("email_subject is required when email_to is set"), nil
		}
	}

	start := time.Now()
	response, err := sc.Generator.Generate(ctx, agent.Request{
		CustomerID: customerID,
		Request:    req,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate outreach: %v", err)), nil
	}

	out := map[string]any{
		"response":      response,
		"response_time": time.Since(start).Seconds(),
	}

	if emailTo != "" {
		messageID, err := sc.Mailer.Send(ctx, mailer.Message{
			To:      emailTo,
			Subject: emailSubject,
			Body:    response,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("generated message but email delivery failed: %v", err)), nil
		}
		out["email_message_id"] = messageID

		// The email log is best-effort; a failed insert never fails the send.
		if sc.Store != nil {
			if err := sc.Store.LogEmail(ctx, customerID, emailTo, emailSubject, messageID); err != nil {
				slog.Warn("failed to log email delivery",
					"recipient", emailTo,
					"error", err)
			}
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
