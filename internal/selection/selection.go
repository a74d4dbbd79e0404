// Package selection extracts drawing file numbers from the file-selection descriptors
// referenced by the job table.
package selection

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Marker identifies lines of an engine-authored selection text file that name a file.
const Marker = "Teilbild"

var ErrEmptySelection = errors.New("selection contains no drawing files")

// ReadMarkerFile reads a line-oriented selection file. The returned error wraps
// fs.ErrNotExist when the file is missing.
func ReadMarkerFile(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	numbers, err := ParseMarker(f)
	if err != nil {
		return nil, fmt.Errorf("selection %s: %w", path, err)
	}
	return numbers, nil
}

func ParseMarker(r io.Reader) ([]int, error) {
	numbers := make([]int, 0, 8)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !strings.Contains(line, Marker) {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) < 2 {
			return nil, fmt.Errorf("line %d: no quoted file number", lineNo)
		}
		n, err := ParseFileNumber(parts[len(parts)-2])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		numbers = append(numbers, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return numbers, nil
}

// ReadXMLFile reads an XML selection document. Teilbild nodes come first in
// document order, followed by activated File entries.
func ReadXMLFile(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	numbers, err := ParseXML(f)
	if err != nil {
		return nil, fmt.Errorf("selection %s: %w", path, err)
	}
	return numbers, nil
}

func ParseXML(r io.Reader) ([]int, error) {
	dec := xml.NewDecoder(r)
	var nodes, files []int
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse XML: %w", err)
		}
		if _, ok := tok.(xml.EndElement); ok {
			depth--
			continue
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		depth++
		// only descendants of the document element count
		if depth == 1 {
			continue
		}
		switch start.Name.Local {
		case Marker:
			v, ok := attr(start, "NodeID")
			if !ok {
				continue
			}
			n, err := ParseFileNumber(v)
			if err != nil {
				return nil, fmt.Errorf("%s NodeID: %w", Marker, err)
			}
			nodes = append(nodes, n)
		case "File":
			if a, _ := attr(start, "Activated"); a != "1" {
				continue
			}
			id, ok := attr(start, "ID")
			if !ok {
				continue
			}
			if state, _ := attr(start, "State"); state != "2" && state != "3" {
				continue
			}
			n, err := ParseFileNumber(id)
			if err != nil {
				return nil, fmt.Errorf("File ID: %w", err)
			}
			files = append(files, n)
		}
	}
	return append(nodes, files...), nil
}

// ParseFileNumber parses a drawing file number with leading zeros stripped.
func ParseFileNumber(raw string) (int, error) {
	v := strings.TrimLeft(strings.TrimSpace(raw), "0")
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid drawing file number %q", raw)
	}
	return n, nil
}

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
