package maven

import (
	"deptrace/models"
	"regexp"
	"strings"
	"unicode"
)

const (
	infoPrefix       = "[INFO] "
	terminatorPrefix = "-----"
)

var (
	// A dependency:tree node, anchored at the start of a normalized line:
	//
	//	<indent>(<group>:<name>:<type>:<version>[:<scope>][ - omitted for duplicate)]
	//
	// Groups: 1 indentation run, 2 duplicate parenthesis, 3 group, 4 name,
	// 5 type, 6 version, 8 scope, 9 duplicate note.
	dependencyRegex = regexp.MustCompile("^((?:\\+- |\\\\- |   |\\|  )+)?" +
		"(\\()?" +
		"([a-z0-9._-]+):" +
		"([a-zA-Z0-9._-]+):" +
		"([a-z]+):" +
		"([0-9a-zA-Z._-]+)" +
		"(:(compile|test|provided))?" +
		"( - omitted for duplicate\\))?")
	indentRegex = regexp.MustCompile("\\+- |\\\\- |   |\\|  ")
)

// Normalize removes the [INFO] marker Maven puts in front of every log line
// and trims trailing whitespace.
func Normalize(line string) string {
	line = strings.TrimPrefix(line, infoPrefix)
	return strings.TrimRightFunc(line, unicode.IsSpace)
}

func IsValidNode(line string) bool {
	return dependencyRegex.MatchString(Normalize(line))
}

// IsTerminator reports whether a normalized line is the dashed rule Maven
// prints between modules of a reactor build.
func IsTerminator(line string) bool {
	return strings.HasPrefix(line, terminatorPrefix)
}

// DepthOf returns the number of indentation units in front of a normalized
// node-line, or -1 when the line is not a node-line at all. "+- ", "\- ",
// "|  " and three spaces each count as one level.
func DepthOf(line string) int {
	r := dependencyRegex.FindStringSubmatch(line)
	if r == nil {
		return -1
	}
	return countIndent(r[1])
}

func countIndent(indent string) int {
	if indent == "" {
		return 0
	}
	return len(indentRegex.FindAllStringIndex(indent, -1))
}

// ParseNode normalizes a raw report line and splits it into its coordinates.
func ParseNode(line string) (models.Dependency, bool) {
	normalized := Normalize(line)
	r := dependencyRegex.FindStringSubmatch(normalized)
	if r == nil {
		return models.Dependency{}, false
	}
	return models.Dependency{
		GroupId:    r[3],
		ArtifactId: r[4],
		Extension:  r[5],
		Version:    r[6],
		Scope:      r[8],
		Omitted:    r[2] != "" || r[9] != "",
		Depth:      countIndent(r[1]),
		Line:       normalized,
	}, true
}
