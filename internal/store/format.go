package store

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// formatCustomerContext renders the prompt-ready context block the outreach
// agent embeds in its system message.
func formatCustomerContext(c *Customer, tickets []Ticket, interactions []Interaction) string {
	ticketSection := "No active tickets found"
	if len(tickets) > 0 {
		ticketSection = formatTickets(tickets)
	}

	interactionSection := "No recent interactions found"
	if len(interactions) > 0 {
		interactionSection = formatInteractions(interactions)
	}

	preferenceSection := "No specific preferences recorded"
	if len(c.Preferences) > 0 {
		if data, err := json.MarshalIndent(c.Preferences, "", "  "); err == nil {
			preferenceSection = string(data)
		}
	}

	return fmt.Sprintf(`Customer Profile:
- Name: %s
- Email: %s

Active Tickets:
%s

Recent Interactions:
%s

Customer Preferences:
%s`, c.Name, c.Email, ticketSection, interactionSection, preferenceSection)
}

// formatTickets organizes tickets into open, purchase-history, and resolved
// sections. Purchase categorization wins over status.
func formatTickets(tickets []Ticket) string {
	var open, purchases, resolved []string

	for _, t := range tickets {
		status := strings.ToUpper(t.Status)
		tags := "None"
		if len(t.Tags) > 0 {
			tags = strings.Join(t.Tags, ", ")
		}

		formatted := fmt.Sprintf(`Title: %s
Status: %s
Priority: %s
Created: %s
Tags: %s
Description: %s`, t.Title, status, t.Priority, t.CreatedAt.Format("2006-01-02"), tags, t.Description)

		switch {
		case hasTag(t.Tags, "PURCHASE") || hasTag(t.Tags, "ORDER"):
			purchases = append(purchases, formatted)
		case status == "RESOLVED" || status == "CLOSED" || status == "COMPLETED":
			resolved = append(resolved, formatted)
		default:
			open = append(open, formatted)
		}
	}

	var sections []string
	if len(open) > 0 {
		sections = append(sections, "=== Open Tickets ===\n"+strings.Join(open, "\n"))
	}
	if len(purchases) > 0 {
		sections = append(sections, "=== Purchase History ===\n"+strings.Join(purchases, "\n"))
	}
	if len(resolved) > 0 {
		sections = append(sections, "=== Recently Resolved ===\n"+strings.Join(resolved, "\n"))
	}

	return strings.Join(sections, "\n\n")
}

func formatInteractions(interactions []Interaction) string {
	formatted := make([]string, 0, len(interactions))
	for _, in := range interactions {
		success := "Unknown"
		if v, ok := in.Metadata["success"]; ok {
			success = fmt.Sprintf("%v", v)
		}
		formatted = append(formatted, fmt.Sprintf(`Date: %s
Type: %s
Content: %s
Success: %s`, in.CreatedAt.Format("2006-01-02"), in.Type, in.Content, success))
	}
	return strings.Join(formatted, "\n")
}

func hasTag(tags []string, tag string) bool {
	return slices.ContainsFunc(tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}
