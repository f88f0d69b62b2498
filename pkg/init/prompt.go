package init

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// InteractivePrompt handles interactive user input
type InteractivePrompt struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewInteractivePrompt creates a new InteractivePrompt instance
func NewInteractivePrompt(in io.Reader, out io.Writer) *InteractivePrompt {
	return &InteractivePrompt{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// ConfirmOverwrite prompts the user to confirm overwriting an existing file
func (p *InteractivePrompt) ConfirmOverwrite(path string) bool {
	fmt.Fprintf(p.out, "Configuration file %s already exists.\n", path)
	fmt.Fprint(p.out, "Do you want to overwrite it? (y/N): ")

	if p.scanner.Scan() {
		response := strings.ToLower(strings.TrimSpace(p.scanner.Text()))
		return response == "y" || response == "yes"
	}

	return false
}

// GetStringInput prompts for a string input with an optional default value
func (p *InteractivePrompt) GetStringInput(prompt string, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(p.out, "%s (default: %s): ", prompt, defaultValue)
	} else {
		fmt.Fprintf(p.out, "%s: ", prompt)
	}

	if p.scanner.Scan() {
		input := strings.TrimSpace(p.scanner.Text())
		if input == "" && defaultValue != "" {
			return defaultValue
		}
		return input
	}

	return defaultValue
}

// SelectOption presents numbered options and returns the chosen one.
// Empty input or an invalid choice selects defaultValue.
func (p *InteractivePrompt) SelectOption(prompt string, options []string, defaultValue string) string {
	fmt.Fprintf(p.out, "%s:\n", prompt)
	for i, option := range options {
		marker := " "
		if option == defaultValue {
			marker = "*"
		}
		fmt.Fprintf(p.out, " %s %d. %s\n", marker, i+1, option)
	}
	fmt.Fprintf(p.out, "Select (1-%d, default: %s): ", len(options), defaultValue)

	if !p.scanner.Scan() {
		return defaultValue
	}

	input := strings.TrimSpace(p.scanner.Text())
	if input == "" {
		return defaultValue
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	for _, option := range options {
		if strings.EqualFold(option, input) {
			return option
		}
	}

	fmt.Fprintf(p.out, "Invalid selection %q, using %s\n", input, defaultValue)
	return defaultValue
}
