package mockserver

import (
	"crypto/rand"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wau-ai/wau-cli/internal/registry"
)

// DefaultProgress is the audit progression reported for every task.
var DefaultProgress = []string{"scanning endpoints", "red-team testing", "computing trust score"}

var (
	errTaskNotFound = errors.New("task not found")
	errDuplicate    = errors.New("agent already registered")
)

type task struct {
	id     string
	script []registry.TaskStatus
	polls  int
}

// store keeps registered agents and their audit tasks in memory.
type store struct {
	mu       sync.Mutex
	tasks    map[string]*task
	agents   map[string]string // agent key -> task id
	entropy  *ulid.MonotonicEntropy
	progress []string
	script   []registry.TaskStatus
}

func newStore(progress []string, script []registry.TaskStatus) *store {
	return &store{
		tasks:    make(map[string]*task),
		agents:   make(map[string]string),
		entropy:  ulid.Monotonic(rand.Reader, 0),
		progress: progress,
		script:   script,
	}
}

// agentKey identifies an agent by url, or by name when the url is empty.
func agentKey(name, url string) string {
	if u := strings.ToLower(strings.TrimRight(strings.TrimSpace(url), "/")); u != "" {
		return "url:" + u
	}
	return "name:" + strings.ToLower(strings.TrimSpace(name))
}

// create registers an agent and returns its new task id.
func (s *store) create(name, url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := agentKey(name, url)
	if _, ok := s.agents[key]; ok {
		return "", errDuplicate
	}

	id := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
	s.tasks[id] = &task{id: id, script: s.scriptFor(name)}
	s.agents[key] = id
	return id, nil
}

// next returns the status for one poll and advances the task.
func (s *store) next(id string) (registry.TaskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return registry.TaskStatus{}, errTaskNotFound
	}
	i := t.polls
	if i >= len(t.script) {
		i = len(t.script) - 1
	}
	t.polls++
	return t.script[i], nil
}

func (s *store) scriptFor(name string) []registry.TaskStatus {
	if len(s.script) > 0 {
		return append([]registry.TaskStatus(nil), s.script...)
	}

	script := []registry.TaskStatus{{Status: registry.StatusPending}}
	for _, p := range s.progress {
		script = append(script, registry.TaskStatus{Status: registry.StatusProcessing, Progress: p})
	}
	score := TrustScore(name)
	return append(script, registry.TaskStatus{Status: registry.StatusSuccess, TrustScore: &score})
}

// TrustScore derives a stable score in [60, 100] from an agent name.
func TrustScore(name string) float64 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return float64(60 + h.Sum32()%41)
}
