// Package store implements the shared claim store: append-only,
// category-partitioned JSON logs plus one mutable state record, coordinated
// across independent processes by a single advisory file lock.
//
// Reads are self-healing: a missing or unparseable file yields an empty log
// or default state, never a parse error. Writes are whole-file rewrites, so
// unlocked readers may observe a stale but never a torn snapshot — as long
// as every writer goes through a transaction.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppetrenko/veridex/internal/model"
)

// Category names one partitioned log file
type Category string

const (
	CategoryEpisodes    Category = "episodes"
	CategoryFacts       Category = "facts"
	CategoryTheory      Category = "theory"
	CategoryUnsure      Category = "unsure"
	CategoryTrash       Category = "trash"
	CategoryValidations Category = "validations"
	CategoryQuestions   Category = "questions"
)

// ClaimCategories lists the logs that hold Claim records
var ClaimCategories = []Category{CategoryFacts, CategoryTheory, CategoryUnsure, CategoryTrash}

// CategoryFor maps a claim class to its log
func CategoryFor(class model.Class) Category {
	switch class {
	case model.ClassFact:
		return CategoryFacts
	case model.ClassTheory:
		return CategoryTheory
	case model.ClassTrash:
		return CategoryTrash
	default:
		return CategoryUnsure
	}
}

const (
	stateFile = "state.json"
	lockFile  = ".lock"
)

// Store provides access to the data directory. Zero-cost to construct;
// all I/O happens per call.
type Store struct {
	dir         string
	lockTimeout time.Duration
}

// New creates a store over the given data directory
func New(dir string, lockTimeout time.Duration) *Store {
	return &Store{dir: dir, lockTimeout: lockTimeout}
}

// Dir returns the data directory path
func (s *Store) Dir() string { return s.dir }

// EnsureDir creates the data directory if it does not exist
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) categoryPath(cat Category) string {
	return s.path(string(cat) + ".json")
}

// LockPath returns the lock marker path (exposed for operator tooling)
func (s *Store) LockPath() string { return s.path(lockFile) }

// readList reads a whole JSON array file. Missing or corrupt files degrade
// to an empty slice at the cost of silently ignoring that file's history.
func readList[T any](path string) []T {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// writeList rewrites a whole JSON array file
func writeList[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Claims reads one claim log without taking the lock. The snapshot may be
// slightly stale but is always structurally valid.
func (s *Store) Claims(cat Category) []model.Claim {
	return readList[model.Claim](s.categoryPath(cat))
}

// Validations reads the validation log without taking the lock
func (s *Store) Validations() []model.Validation {
	return readList[model.Validation](s.categoryPath(CategoryValidations))
}

// Questions reads the question log without taking the lock
func (s *Store) Questions() []model.Question {
	return readList[model.Question](s.categoryPath(CategoryQuestions))
}

// Episodes reads the episode log without taking the lock
func (s *Store) Episodes() []model.Episode {
	return readList[model.Episode](s.categoryPath(CategoryEpisodes))
}

// State reads the process state without taking the lock, substituting the
// default state when the file is missing or unparseable.
func (s *Store) State() model.ProcessState {
	return readState(s.path(stateFile))
}

// ClaimCounts returns the current THEORY and UNSURE log sizes
func (s *Store) ClaimCounts() (theory, unsure int) {
	return len(s.Claims(CategoryTheory)), len(s.Claims(CategoryUnsure))
}

func readState(path string) model.ProcessState {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.DefaultState()
	}
	var st model.ProcessState
	if err := json.Unmarshal(data, &st); err != nil {
		return model.DefaultState()
	}
	return st.Normalize()
}

// Tx is a lock-scoped read-modify-write transaction. Every mutation of the
// store, including any state update that logically accompanies an append,
// must happen through one Tx so the whole sequence is serialized.
type Tx struct {
	store *Store
	lock  *FileLock
}

// Begin acquires the store lock and returns a transaction. Callers must
// Release it, typically via defer.
func (s *Store) Begin() (*Tx, error) {
	if err := s.EnsureDir(); err != nil {
		return nil, err
	}
	lock := NewFileLock(s.LockPath(), s.lockTimeout)
	if err := lock.Acquire(); err != nil {
		return nil, err
	}
	return &Tx{store: s, lock: lock}, nil
}

// Release drops the lock. Safe to call once only.
func (tx *Tx) Release() {
	tx.lock.Release()
}

// Claims reads a claim log inside the lock scope
func (tx *Tx) Claims(cat Category) []model.Claim {
	return tx.store.Claims(cat)
}

// ClaimCounts returns THEORY and UNSURE log sizes inside the lock scope
func (tx *Tx) ClaimCounts() (theory, unsure int) {
	return tx.store.ClaimCounts()
}

// AppendClaim appends a claim to the log for its class
func (tx *Tx) AppendClaim(c model.Claim) error {
	path := tx.store.categoryPath(CategoryFor(c.Class))
	items := readList[model.Claim](path)
	items = append(items, c)
	return writeList(path, items)
}

// AppendEpisode appends one collector episode
func (tx *Tx) AppendEpisode(e model.Episode) error {
	path := tx.store.categoryPath(CategoryEpisodes)
	items := readList[model.Episode](path)
	items = append(items, e)
	return writeList(path, items)
}

// AppendValidations appends engine outcomes to the validation log
func (tx *Tx) AppendValidations(vs []model.Validation) error {
	if len(vs) == 0 {
		return nil
	}
	path := tx.store.categoryPath(CategoryValidations)
	items := readList[model.Validation](path)
	items = append(items, vs...)
	return writeList(path, items)
}

// AppendQuestions appends generated questions to the question log
func (tx *Tx) AppendQuestions(qs []model.Question) error {
	if len(qs) == 0 {
		return nil
	}
	path := tx.store.categoryPath(CategoryQuestions)
	items := readList[model.Question](path)
	items = append(items, qs...)
	return writeList(path, items)
}

// State reads the process state inside the lock scope
func (tx *Tx) State() model.ProcessState {
	return readState(tx.store.path(stateFile))
}

// WriteState rewrites the process state record
func (tx *Tx) WriteState(st model.ProcessState) error {
	data, err := json.MarshalIndent(st.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(tx.store.path(stateFile), data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
