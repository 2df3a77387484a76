package maven

import (
	"bufio"
	"deptrace/models"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const noResultsMessage = "No results found."

var ErrFileNotFound = errors.New("file not found")

// Result summarizes a single pass over a report.
type Result struct {
	Lines    int
	Bytes    uint64
	Matches  int
	MaxDepth int
}

// Searcher prints the ancestry of every node-line containing a search term.
type Searcher struct {
	Out       io.Writer
	Logger    log.Ext1FieldLogger
	Highlight *color.Color
}

func (s *Searcher) logger() log.Ext1FieldLogger {
	if s.Logger == nil {
		return log.StandardLogger()
	}
	return s.Logger
}

func (s *Searcher) SearchFile(path string, term string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, errors.Wrapf(ErrFileNotFound, "%s: %v", path, err)
	}
	if !info.Mode().IsRegular() {
		return Result{}, errors.Wrapf(ErrFileNotFound, "%s is not a regular file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	res, err := s.Search(f, term)
	if err != nil {
		return res, errors.Wrapf(err, "failed to read %s", path)
	}
	return res, nil
}

// Search reads the report line by line. Matches are written as soon as they
// are found, so an error part way through leaves earlier output intact.
func (s *Searcher) Search(r io.Reader, term string) (Result, error) {
	var res Result
	stack := NewDependencyStack(s.logger())
	reader := bufio.NewReader(r)

	for {
		line, readErr := reader.ReadString('\n')
		if len(line) > 0 {
			res.Lines++
			res.Bytes += uint64(len(line))

			if stack.ProcessLine(line) {
				top, _ := stack.Top()
				if top.Depth > res.MaxDepth {
					res.MaxDepth = top.Depth
				}
				if peek, _ := stack.Peek(); strings.Contains(peek, term) {
					res.Matches++
					s.logger().Tracef("Match: %s scope=%q omitted=%v", top.Coordinates(), top.Scope, top.Omitted)
					if err := s.printPath(stack.Nodes(), term); err != nil {
						return res, err
					}
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return res, errors.Wrap(readErr, "read error")
		}
	}

	if res.Matches == 0 {
		if _, err := fmt.Fprintln(s.Out, noResultsMessage); err != nil {
			return res, errors.Wrap(err, "write error")
		}
	}
	return res, nil
}

func (s *Searcher) printPath(path []models.Dependency, term string) error {
	var b strings.Builder
	for i, node := range path {
		line := node.Line
		if i == len(path)-1 {
			line = s.highlight(line, term)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if _, err := io.WriteString(s.Out, b.String()); err != nil {
		return errors.Wrap(err, "write error")
	}
	return nil
}

func (s *Searcher) highlight(line string, term string) string {
	if s.Highlight == nil || color.NoColor || term == "" {
		return line
	}
	return strings.ReplaceAll(line, term, s.Highlight.Sprint(term))
}
