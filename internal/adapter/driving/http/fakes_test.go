package httphandler_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
	"github.com/ericfisherdev/examdesk/internal/domain/port/driven"
)

// --- In-memory port implementations ---

type memCredentialStore struct {
	mu    sync.Mutex
	creds map[string]model.Credential
	err   error
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{creds: make(map[string]model.Credential)}
}

func (m *memCredentialStore) Insert(_ context.Context, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, c := range m.creds {
		if c.Email == cred.Email {
			return driven.ErrEmailTaken
		}
	}
	m.creds[cred.ID] = cred
	return nil
}

func (m *memCredentialStore) Update(_ context.Context, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[cred.ID]; !ok {
		return driven.ErrCredentialNotFound
	}
	m.creds[cred.ID] = cred
	return nil
}

func (m *memCredentialStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[id]; !ok {
		return driven.ErrCredentialNotFound
	}
	delete(m.creds, id)
	return nil
}

func (m *memCredentialStore) GetByID(_ context.Context, id string) (*model.Credential, error) {
	return m.find(func(c model.Credential) bool { return c.ID == id })
}

func (m *memCredentialStore) GetByEmail(_ context.Context, email string) (*model.Credential, error) {
	return m.find(func(c model.Credential) bool { return c.Email == email })
}

func (m *memCredentialStore) GetByToken(_ context.Context, token string) (*model.Credential, error) {
	return m.find(func(c model.Credential) bool { return c.Token == token })
}

func (m *memCredentialStore) ListAll(_ context.Context) ([]model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.Credential, 0, len(m.creds))
	for _, c := range m.creds {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memCredentialStore) find(match func(model.Credential) bool) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.creds {
		if match(c) {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

type memRecoveryStore struct {
	mu     sync.Mutex
	grants map[string]model.RecoveryGrant
}

func newMemRecoveryStore() *memRecoveryStore {
	return &memRecoveryStore{grants: make(map[string]model.RecoveryGrant)}
}

func (m *memRecoveryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.grants)
}

func (m *memRecoveryStore) Insert(_ context.Context, grant model.RecoveryGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants[grant.Token] = grant
	return nil
}

func (m *memRecoveryStore) GetByToken(_ context.Context, token string) (*model.RecoveryGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grants[token]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (m *memRecoveryStore) MarkUsed(_ context.Context, token string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grants[token]
	if !ok || !g.Usable(now) {
		return false, nil
	}
	g.Used = true
	m.grants[token] = g
	return true, nil
}

func (m *memRecoveryStore) DeleteInert(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for token, g := range m.grants {
		if g.ExpiresAt.Before(cutoff) || (g.Used && g.CreatedAt.Before(cutoff)) {
			delete(m.grants, token)
			removed++
		}
	}
	return removed, nil
}

type memExamStore struct {
	mu    sync.Mutex
	exams map[string]model.Exam
	err   error
}

func newMemExamStore() *memExamStore {
	return &memExamStore{exams: make(map[string]model.Exam)}
}

func (m *memExamStore) Create(_ context.Context, exam model.Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.exams[exam.ID] = exam
	return nil
}

func (m *memExamStore) Update(_ context.Context, exam model.Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[exam.ID]; !ok {
		return driven.ErrExamNotFound
	}
	m.exams[exam.ID] = exam
	return nil
}

func (m *memExamStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[id]; !ok {
		return driven.ErrExamNotFound
	}
	delete(m.exams, id)
	return nil
}

func (m *memExamStore) GetByID(_ context.Context, id string) (*model.Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.exams[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *memExamStore) ListAll(_ context.Context) ([]model.Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.Exam, 0, len(m.exams))
	for _, e := range m.exams {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memExamStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return len(m.exams), nil
}

type sentMessage struct {
	address string
	msg     model.Message
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (n *recordingNotifier) Notify(_ context.Context, address string, msg model.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, sentMessage{address: address, msg: msg})
	return nil
}

func (n *recordingNotifier) last() sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentMessage{}
	}
	return n.sent[len(n.sent)-1]
}
