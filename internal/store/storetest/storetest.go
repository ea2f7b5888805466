// Package storetest provides in-memory implementations of the store
// contracts with failure injection, for tests.
package storetest

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/cessadesk/cessadesk/internal/models"
	"github.com/cessadesk/cessadesk/internal/store"
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("storetest: injected failure")

// Submissions is an in-memory store.Submissions.
type Submissions struct {
	mu     sync.Mutex
	rows   map[string]models.Submission
	seq    int
	Calls  []string
	FailOn map[string]bool
}

func NewSubmissions(rows ...models.Submission) *Submissions {
	s := &Submissions{rows: make(map[string]models.Submission), FailOn: make(map[string]bool)}
	for _, r := range rows {
		if r.ID == "" {
			s.seq++
			r.ID = strconv.Itoa(s.seq)
		}
		s.rows[r.ID] = r
	}
	return s
}

func (s *Submissions) call(op string) error {
	s.Calls = append(s.Calls, op)
	if s.FailOn[op] {
		return ErrInjected
	}
	return nil
}

func (s *Submissions) Insert(ctx context.Context, sub *models.Submission) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("insert"); err != nil {
		return "", err
	}
	s.seq++
	id := strconv.Itoa(s.seq)
	row := *sub
	row.ID = id
	s.rows[id] = row
	return id, nil
}

func (s *Submissions) List(ctx context.Context) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("list"); err != nil {
		return nil, err
	}
	out := make([]models.Submission, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (s *Submissions) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("find"); err != nil {
		return nil, err
	}
	r, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *Submissions) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("update"); err != nil {
		return err
	}
	r, ok := s.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	r.Status = status
	s.rows[id] = r
	return nil
}

func (s *Submissions) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("delete"); err != nil {
		return err
	}
	if _, ok := s.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// Len returns the number of stored rows.
func (s *Submissions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Lawyers is an in-memory store.Lawyers.
type Lawyers struct {
	mu     sync.Mutex
	rows   map[string]models.Lawyer
	seq    int
	Calls  []string
	FailOn map[string]bool
}

func NewLawyers(rows ...models.Lawyer) *Lawyers {
	l := &Lawyers{rows: make(map[string]models.Lawyer), FailOn: make(map[string]bool)}
	for _, r := range rows {
		if r.ID == "" {
			l.seq++
			r.ID = strconv.Itoa(l.seq)
		}
		l.rows[r.ID] = r
	}
	return l
}

func (l *Lawyers) call(op string) error {
	l.Calls = append(l.Calls, op)
	if l.FailOn[op] {
		return ErrInjected
	}
	return nil
}

func (l *Lawyers) Insert(ctx context.Context, in *models.Lawyer) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.call("insert"); err != nil {
		return "", err
	}
	for _, r := range l.rows {
		if r.OAB == in.OAB {
			return "", store.ErrDuplicate
		}
	}
	l.seq++
	id := strconv.Itoa(l.seq)
	row := *in
	row.ID = id
	l.rows[id] = row
	return id, nil
}

func (l *Lawyers) FindByOAB(ctx context.Context, oab string) (*models.Lawyer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.call("find"); err != nil {
		return nil, err
	}
	for _, r := range l.rows {
		if r.OAB == oab {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (l *Lawyers) FindByID(ctx context.Context, id string) (*models.Lawyer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.call("find"); err != nil {
		return nil, err
	}
	r, ok := l.rows[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (l *Lawyers) List(ctx context.Context) ([]models.Lawyer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.call("list"); err != nil {
		return nil, err
	}
	out := make([]models.Lawyer, 0, len(l.rows))
	for _, r := range l.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (l *Lawyers) UpdateStatus(ctx context.Context, id string, status models.AccountStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.call("update"); err != nil {
		return err
	}
	r, ok := l.rows[id]
	if !ok {
		return store.ErrNotFound
	}
	r.Status = status
	l.rows[id] = r
	return nil
}

func (l *Lawyers) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.call("delete"); err != nil {
		return err
	}
	if _, ok := l.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(l.rows, id)
	return nil
}

// Objects is an in-memory store.Objects. FailAfter makes the Nth Put
// (1-based) fail; FailGet makes every Get fail.
type Objects struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	types     map[string]string
	puts      int
	FailAfter int
	FailGet   bool
	Deleted   []string
}

func NewObjects() *Objects {
	return &Objects{blobs: make(map[string][]byte), types: make(map[string]string)}
}

func (o *Objects) Put(ctx context.Context, path string, data []byte, contentType string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.puts++
	if o.FailAfter > 0 && o.puts == o.FailAfter {
		return ErrInjected
	}
	o.blobs[path] = append([]byte(nil), data...)
	o.types[path] = contentType
	return nil
}

func (o *Objects) URL(path string) string {
	return "https://files.test/" + path
}

func (o *Objects) Get(ctx context.Context, path string) ([]byte, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.FailGet {
		return nil, "", ErrInjected
	}
	data, ok := o.blobs[path]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return data, o.types[path], nil
}

func (o *Objects) Delete(ctx context.Context, path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Deleted = append(o.Deleted, path)
	delete(o.blobs, path)
	return nil
}

// Len returns the number of stored objects.
func (o *Objects) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.blobs)
}
