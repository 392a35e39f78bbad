package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Set stores a value under key, read from file or stdin. With showDiff,
// an existing differing value is shown as a line diff and the overwrite
// must be confirmed; this requires the value to come from a file so
// stdin stays available for the confirmation.
func Set(opts Options, key, file string, showDiff bool) {
	if showDiff && file == "" {
		HandleError(fmt.Errorf("--diff requires --file"))
	}

	data, err := readValue(file)
	if err != nil {
		HandleError(err)
	}

	v, release, err := OpenVault(opts)
	if err != nil {
		HandleError(err)
	}
	defer release()

	if showDiff && v.Contains(key) {
		current, err := v.GetWithPrompt(key, "show current value of "+key)
		if err == nil && !bytes.Equal(current, data) {
			os.Stdout.Write(lineDiff(current, data))
			if !confirm("Overwrite? [y/N] ") {
				fmt.Println("Aborted")
				return
			}
		}
	}

	if err := v.Set(data, key); err != nil {
		HandleError(err)
	}
	fmt.Printf("Stored %q\n", key)
}

func readValue(file string) ([]byte, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}

func confirm(question string) bool {
	fmt.Print(question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(line)) == "y"
}
