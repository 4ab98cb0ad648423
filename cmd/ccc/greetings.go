package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	brandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5c542")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cmdStyle   = lipgloss.NewStyle().Bold(true)
)

func printHelp(w io.Writer) {
	title := brandStyle.Render("C R O W N   C R E A T I V E")
	tagline := mutedStyle.Italic(true).Render("Client portal for the studio.")

	commands := []struct{ cmd, desc string }{
		{"ccc", "Open the portal (interactive TUI)"},
		{"ccc --session <id>", "Confirm a checkout payment in the TUI"},
		{"ccc login --email <e>", "Sign in (password from CCC_PASSWORD or stdin)"},
		{"ccc register", "Create an account (--name, --email, --phone)"},
		{"ccc logout", "Clear your session"},
		{"ccc whoami", "Show the signed-in account"},
		{"ccc pay-status <id>", "Poll a checkout session until it settles"},
		{"ccc upload <path>", "Upload a file (--folder, --order)"},
		{"ccc forgot-password <e>", "Send a password reset email"},
		{"ccc --version", "Show version"},
		{"ccc help", "You are here"},
	}

	fmt.Fprintf(w, "\n  %s\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", c.cmd)), mutedStyle.Render(c.desc))
	}
	fmt.Fprintln(w)
}

func printSignedOut(w io.Writer) {
	fmt.Fprintf(w, "%s\n%s\n", "Not signed in.", mutedStyle.Render("To sign in: ccc login --email <email>"))
}
