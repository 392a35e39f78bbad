package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff compares the value stored under key with a local file, printing
// differing sections as conflict-style hunks.
func Diff(opts Options, key, file string) {
	local, err := os.ReadFile(file)
	if err != nil {
		HandleError(fmt.Errorf("failed to read %s: %w", file, err))
	}

	v, release, err := OpenVault(opts)
	if err != nil {
		HandleError(err)
	}
	defer release()

	stored, err := v.GetWithPrompt(key, "compare "+key+" against "+file)
	if err != nil {
		HandleError(err)
	}

	if bytes.Equal(stored, local) {
		fmt.Println("No differences")
		return
	}
	os.Stdout.Write(lineDiff(stored, local))
}

// lineDiff produces a line-level diff where common lines appear once
// and only differing sections are wrapped in conflict markers.
func lineDiff(storedData, localData []byte) []byte {
	dmp := diffmatchpatch.New()

	// Line-mode diff (more efficient for text values)
	a, b, lineArray := dmp.DiffLinesToChars(string(storedData), string(localData))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	return buildHunks(diffs)
}

// buildHunks converts diff output to conflict-marked content. Equal
// sections pass through unchanged; delete/insert runs become one hunk.
func buildHunks(diffs []diffmatchpatch.Diff) []byte {
	var buf bytes.Buffer

	i := 0
	for i < len(diffs) {
		switch diffs[i].Type {
		case diffmatchpatch.DiffEqual:
			buf.WriteString(diffs[i].Text)
			i++

		case diffmatchpatch.DiffDelete, diffmatchpatch.DiffInsert:
			buf.WriteString("<<<<<<< stored\n")
			for i < len(diffs) && diffs[i].Type == diffmatchpatch.DiffDelete {
				writeLine(&buf, diffs[i].Text)
				i++
			}
			buf.WriteString("=======\n")
			for i < len(diffs) && diffs[i].Type == diffmatchpatch.DiffInsert {
				writeLine(&buf, diffs[i].Text)
				i++
			}
			buf.WriteString(">>>>>>> local\n")
		}
	}

	return buf.Bytes()
}

func writeLine(buf *bytes.Buffer, text string) {
	buf.WriteString(text)
	if len(text) > 0 && text[len(text)-1] != '\n' {
		buf.WriteByte('\n')
	}
}
