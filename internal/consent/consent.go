// Package consent gates scans behind an explicit one-time acknowledgement
// that the operator is authorized to probe the target.
package consent

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// markerFileName is the file recorded under the user's home directory once
// consent has been given.
const markerFileName = ".vibe-probe-confirmed"

// markerFilePerm is the permission for the consent marker file
const markerFilePerm = 0o600

const disclaimer = `This tool performs active reconnaissance against the target:
DNS queries, TCP port probes, HTTP requests, and WHOIS lookups.
Only scan targets you own or are explicitly authorized to assess.`

// Guard tracks whether the operator has acknowledged the usage terms. The
// marker path and prompt streams are injectable for tests.
type Guard struct {
	// MarkerPath is the consent marker file, defaulting to
	// ~/.vibe-probe-confirmed when empty
	MarkerPath string
	// In is the prompt input stream, defaulting to stdin
	In io.Reader
	// Out is the prompt output stream, defaulting to stdout
	Out io.Writer
}

// Confirmed reports whether consent was previously recorded.
func (g *Guard) Confirmed() bool {
	path, err := g.markerPath()
	if err != nil {
		return false
	}

	_, err = os.Stat(path)

	return err == nil
}

// Prompt shows the disclaimer and asks for a yes/no answer, repeating until
// one is given. On acceptance the marker file is written so subsequent runs
// skip the prompt; on refusal ErrDeclined is returned.
func (g *Guard) Prompt() error {
	in := g.In
	if in == nil {
		in = os.Stdin
	}

	out := g.Out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintln(out, disclaimer)

	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "Do you agree to these terms? [yes/no]: ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading consent answer: %w", err)
			}

			return ErrDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "yes", "y":
			return g.record()
		case "no", "n":
			return ErrDeclined
		}

		fmt.Fprintln(out, `Please answer "yes" or "no".`)
	}
}

// Record writes the consent marker without prompting, used by the --yes flag.
func (g *Guard) Record() error {
	return g.record()
}

func (g *Guard) record() error {
	path, err := g.markerPath()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte("confirmed\n"), markerFilePerm); err != nil {
		return fmt.Errorf("writing consent marker: %w", err)
	}

	return nil
}

func (g *Guard) markerPath() (string, error) {
	if g.MarkerPath != "" {
		return g.MarkerPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	return filepath.Join(home, markerFileName), nil
}
