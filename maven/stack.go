package maven

import (
	"deptrace/models"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DependencyStack rebuilds the path from a tree root to the most recently
// read node. Entries live in a fixed slice indexed by size; popping only moves
// the size back and the next push reuses the slot.
type DependencyStack struct {
	Logger log.Ext1FieldLogger

	entries []models.Dependency
	size    int
}

func NewDependencyStack(logger log.Ext1FieldLogger) *DependencyStack {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &DependencyStack{Logger: logger}
}

func (s *DependencyStack) logger() log.Ext1FieldLogger {
	if s.Logger == nil {
		return log.StandardLogger()
	}
	return s.Logger
}

// ProcessLine feeds one raw report line to the stack and reports whether it
// was pushed as the new top.
func (s *DependencyStack) ProcessLine(line string) bool {
	dep, ok := ParseNode(line)
	if !ok {
		cleaned := Normalize(line)
		if IsTerminator(cleaned) {
			s.logger().Debug("Reached end of module in Maven project")
			s.Reset()
		}
		if s.size > 0 {
			s.logger().Warnf("Invalid dependency line: %s", cleaned)
		}
		return false
	}
	if dep.Depth < 0 {
		return false
	}

	// Anything at the same level or deeper is a sibling or a sibling's
	// descendant, so it can't be an ancestor of this node
	for s.size > 0 && s.entries[s.size-1].Depth >= dep.Depth {
		toss := s.pop()
		s.logger().Debugf("Toss: L%d %s", toss.Depth, toss.Line)
	}
	s.push(dep)
	s.logger().Debugf("Push: L%d %s", dep.Depth, dep.Line)
	return true
}

func (s *DependencyStack) push(dep models.Dependency) {
	if s.size == len(s.entries) {
		s.entries = append(s.entries, dep)
	} else {
		s.entries[s.size] = dep
	}
	s.size++
}

func (s *DependencyStack) pop() models.Dependency {
	s.size--
	dep := s.entries[s.size]
	s.logger().Debugf("Pop : L%d %s", dep.Depth, dep.Line)
	return dep
}

// Peek returns the text of the deepest node on the stack.
func (s *DependencyStack) Peek() (string, bool) {
	dep, ok := s.Top()
	if !ok {
		return "", false
	}
	s.logger().Tracef("Peek: L%d %s", dep.Depth, dep.Line)
	return dep.Line, true
}

func (s *DependencyStack) Top() (models.Dependency, bool) {
	if s.size == 0 {
		return models.Dependency{}, false
	}
	return s.entries[s.size-1], true
}

// CurrentPath returns the node-lines from the root down to the top.
func (s *DependencyStack) CurrentPath() []string {
	path := make([]string, s.size)
	for i := 0; i < s.size; i++ {
		path[i] = s.entries[i].Line
	}
	return path
}

func (s *DependencyStack) Nodes() []models.Dependency {
	nodes := make([]models.Dependency, s.size)
	copy(nodes, s.entries[:s.size])
	return nodes
}

// Len and String are for inspecting the stack in logs and tests.
func (s *DependencyStack) Len() int {
	return s.size
}

func (s *DependencyStack) Reset() {
	s.size = 0
}

func (s *DependencyStack) String() string {
	var b strings.Builder
	for _, line := range s.CurrentPath() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
