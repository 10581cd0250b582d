// Package selector abstracts the start-of-run choices (list, field,
// metric) behind an interface so the interactive prompt can be swapped
// for a scripted driver in tests and automation.
package selector

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/meridian-vc/metricsync/pkg/affinity"
)

// Selector picks the list, field, and metric a sync run operates on.
type Selector interface {
	SelectList(lists []affinity.List) (affinity.List, error)
	SelectField(fields []affinity.Field) (affinity.Field, error)
	SelectMetric(names []string) (string, error)
}

// Prompt is an interactive Selector reading numbered choices from in and
// writing menus to out.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt creates an interactive selector, typically over os.Stdin and
// os.Stdout.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

func (p *Prompt) SelectList(lists []affinity.List) (affinity.List, error) {
	if len(lists) == 0 {
		return affinity.List{}, eris.New("selector: no lists available")
	}

	options := make([]string, len(lists))
	for i, l := range lists {
		options[i] = fmt.Sprintf("%s (ID: %d)", l.Name, l.ID)
	}
	idx, err := p.choose("Select the Affinity list to sync:", options)
	if err != nil {
		return affinity.List{}, err
	}
	return lists[idx], nil
}

func (p *Prompt) SelectField(fields []affinity.Field) (affinity.Field, error) {
	if len(fields) == 0 {
		return affinity.Field{}, eris.New("selector: no fields available")
	}

	// Sort a copy alphabetically for readability; don't reorder the
	// caller's slice.
	sorted := make([]affinity.Field, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	options := make([]string, len(sorted))
	for i, f := range sorted {
		valueType := f.ValueType
		if valueType == "" {
			valueType = "unknown"
		}
		options[i] = fmt.Sprintf("%s (type: %s)", f.Name, valueType)
	}
	idx, err := p.choose("Select which Affinity field to update:", options)
	if err != nil {
		return affinity.Field{}, err
	}
	return sorted[idx], nil
}

func (p *Prompt) SelectMetric(names []string) (string, error) {
	if len(names) == 0 {
		return "", eris.New("selector: no metrics available")
	}

	idx, err := p.choose("Select which Visible metric to sync:", names)
	if err != nil {
		return "", err
	}
	return names[idx], nil
}

// choose prints a numbered menu and reads 1-based selections until a
// valid one arrives. EOF or a read error ends the prompt.
func (p *Prompt) choose(title string, options []string) (int, error) {
	fmt.Fprintln(p.out, title)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}

	for {
		fmt.Fprintf(p.out, "Enter choice [1-%d]: ", len(options))

		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			return 0, eris.Wrap(err, "selector: read choice")
		}

		n, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintln(p.out, "Invalid choice.")

		if err != nil {
			return 0, eris.Wrap(err, "selector: read choice")
		}
	}
}
