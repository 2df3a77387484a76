package maven

import (
	"reflect"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestStack(t *testing.T) (*DependencyStack, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.TraceLevel)
	return NewDependencyStack(logger), hook
}

func warnings(hook *test.Hook) []string {
	var msgs []string
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

func assertStrictlyIncreasing(t *testing.T, s *DependencyStack) {
	t.Helper()
	nodes := s.Nodes()
	for i := 1; i < len(nodes); i++ {
		if nodes[i].Depth <= nodes[i-1].Depth {
			t.Fatalf("depths not strictly increasing at %d: %+v", i, nodes)
		}
	}
}

var chain = []string{
	"us.catalist.fusion:fusion:jar:6.12.1-SNAPSHOT:compile",
	"+- us.catalist.fusion:fusion-core:jar:6.12.1-SNAPSHOT:compile",
	"|  +- org.slf4j:slf4j-api:jar:1.7.30:compile",
	"|  |  \\- org.slf4j:slf4j-nop:jar:1.7.30:test",
}

func TestDependencyStackChain(t *testing.T) {
	s, hook := newTestStack(t)
	for i, line := range chain {
		if !s.ProcessLine(line) {
			t.Fatalf("line %d was not pushed: %q", i, line)
		}
	}
	if s.Len() != len(chain) {
		t.Fatalf("expected %d entries, got %d", len(chain), s.Len())
	}
	if got := s.CurrentPath(); !reflect.DeepEqual(got, chain) {
		t.Fatalf("unexpected path:\n%v", got)
	}

	sibling := "\\- junit:junit:jar:4.12:test"
	if !s.ProcessLine(sibling) {
		t.Fatal("sibling was not pushed")
	}
	want := []string{chain[0], sibling}
	if got := s.CurrentPath(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v after sibling, got %v", want, got)
	}
	if w := warnings(hook); len(w) != 0 {
		t.Fatalf("unexpected warnings: %v", w)
	}
}

func TestDependencyStackSlotsReused(t *testing.T) {
	s, _ := newTestStack(t)
	for _, line := range chain {
		s.ProcessLine(line)
	}
	s.ProcessLine("+- a.b:first:jar:1.0")
	s.ProcessLine("|  \\- a.b:second:jar:1.0")

	nodes := s.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	if nodes[1].ArtifactId != "first" || nodes[2].ArtifactId != "second" {
		t.Fatalf("stale entries in path: %+v", nodes)
	}

	top, ok := s.Top()
	if !ok || top.ArtifactId != "second" {
		t.Fatalf("unexpected top %+v", top)
	}
}

func TestDependencyStackPeek(t *testing.T) {
	s, hook := newTestStack(t)
	if line, ok := s.Peek(); ok || line != "" {
		t.Fatalf("expected empty peek, got %q", line)
	}

	s.ProcessLine("[INFO] us.catalist.fusion:fusion:jar:6.12.1-SNAPSHOT:compile\n")
	line, ok := s.Peek()
	if !ok || line != "us.catalist.fusion:fusion:jar:6.12.1-SNAPSHOT:compile" {
		t.Fatalf("unexpected peek %q", line)
	}
	last := hook.LastEntry()
	if last == nil || last.Level != log.TraceLevel {
		t.Fatalf("expected peek to be traced, got %+v", last)
	}
}

func TestDependencyStackTerminator(t *testing.T) {
	s, hook := newTestStack(t)
	for _, line := range chain {
		s.ProcessLine(line)
	}
	if s.ProcessLine("[INFO] ------------------------------------------------------------------------") {
		t.Fatal("terminator must not be pushed")
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty stack after terminator, got %v", s.CurrentPath())
	}
	if w := warnings(hook); len(w) != 0 {
		t.Fatalf("terminator should not warn, got %v", w)
	}

	// A new module starts over at depth 0
	s.ProcessLine("us.catalist.fusion:fusion-web:war:6.12.1-SNAPSHOT")
	if got := s.CurrentPath(); len(got) != 1 || got[0] != "us.catalist.fusion:fusion-web:war:6.12.1-SNAPSHOT" {
		t.Fatalf("unexpected path after new module: %v", got)
	}
}

func TestDependencyStackTerminatorOnEmptyStack(t *testing.T) {
	s, hook := newTestStack(t)
	s.ProcessLine("----------")
	if s.Len() != 0 {
		t.Fatal("expected empty stack")
	}
	if w := warnings(hook); len(w) != 0 {
		t.Fatalf("unexpected warnings: %v", w)
	}
}

func TestDependencyStackInvalidLines(t *testing.T) {
	s, hook := newTestStack(t)

	// Nothing to warn about before the first tree starts
	s.ProcessLine("[INFO] Scanning for projects...")
	if w := warnings(hook); len(w) != 0 {
		t.Fatalf("unexpected warnings on empty stack: %v", w)
	}

	s.ProcessLine(chain[0])
	s.ProcessLine(chain[1])
	s.ProcessLine("[INFO] \n")
	s.ProcessLine("[INFO] BUILD SUCCESS")

	want := []string{"Invalid dependency line: ", "Invalid dependency line: BUILD SUCCESS"}
	if got := warnings(hook); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected warnings %q, got %q", want, got)
	}
	if got := s.CurrentPath(); !reflect.DeepEqual(got, chain[:2]) {
		t.Fatalf("invalid lines should not change the path, got %v", got)
	}
}

func TestDependencyStackInvariant(t *testing.T) {
	lines := []string{
		"a.b:root:jar:1",
		"+- a.b:one:jar:1",
		"|  +- a.b:two:jar:1",
		"|  |  \\- a.b:three:jar:1",
		"|  \\- a.b:two-b:jar:1",
		"|     \\- a.b:three-b:jar:1",
		"+- a.b:one-b:jar:1",
		"a.b:second-root:jar:1",
		"|  |  |  +- a.b:orphan:jar:1",
		"\\- a.b:one-c:jar:1",
		"-----",
		"   \\- a.b:floating:jar:1",
	}
	wantLen := []int{1, 2, 3, 4, 3, 4, 2, 1, 2, 2, 0, 1}

	s, _ := newTestStack(t)
	for i, line := range lines {
		s.ProcessLine(line)
		assertStrictlyIncreasing(t, s)
		if s.Len() != wantLen[i] {
			t.Fatalf("after %q expected %d entries, got %d: %v", line, wantLen[i], s.Len(), s.CurrentPath())
		}
	}
}

func TestDependencyStackZeroValue(t *testing.T) {
	var s DependencyStack
	s.ProcessLine("a.b:root:jar:1")
	s.ProcessLine("+- a.b:child:jar:1")
	if s.String() != "a.b:root:jar:1\n+- a.b:child:jar:1\n" {
		t.Fatalf("unexpected string %q", s.String())
	}
	s.Reset()
	if s.Len() != 0 || s.String() != "" {
		t.Fatal("expected reset to empty the stack")
	}
}
