package mailer

import (
	"encoding/json"
	"fmt"
)

const emailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        .content { color: #4a5568; font-size: 16px; line-height: 1.8; margin-bottom: 30px; }
        .button {
            background-color: #4f46e5;
            color: #ffffff !important;
            padding: 12px 24px;
            text-decoration: none;
            border-radius: 6px;
            font-weight: 500;
            display: inline-block;
            margin: 20px 0;
        }
        .divider { border-top: 1px solid #e2e8f0; margin: 20px 0; }
        .footer { color: #718096; font-size: 14px; text-align: center; }
    </style>
</head>
<body style="margin: 0; padding: 0; background-color: #f6f9fc; font-family: -apple-system, sans-serif;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <div style="background-color: white; border-radius: 8px; padding: 40px; margin: 20px 0;">
            <div style="text-align: center; margin-bottom: 30px;">
                <h1 style="color: #1a1a1a; margin: 0; font-size: 24px;">TicketAI Support</h1>
            </div>
            <div class="content">%s</div>
            <div class="divider"></div>
            <div style="text-align: center;">%s</div>
        </div>
        <div class="footer">
            <p style="margin: 5px 0;">This is an automated message from TicketAI Support System.</p>
            <p style="margin: 5px 0;">Please do not reply directly to this email.</p>
        </div>
    </div>
</body>
</html>`

// renderHTML wraps the message body in the branded email layout with either
// a ticket link or a dashboard link.
func (m *Mailer) renderHTML(msg Message) string {
	return fmt.Sprintf(emailTemplate, msg.Body, m.actionButton(msg.TicketID))
}

func (m *Mailer) actionButton(ticketID string) string {
	if ticketID != "" {
		return fmt.Sprintf(`<a href="%s/ticket/%s" class="button">View Ticket Details</a>`, m.frontendURL, ticketID)
	}
	return fmt.Sprintf(`<a href="%s/dashboard" class="button">View Dashboard</a>`, m.frontendURL)
}

// parseMessageID extracts the message ID from a Mailgun send response.
func parseMessageID(body []byte) string {
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.ID
}
