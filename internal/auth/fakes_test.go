package auth

import (
	"context"
	"sync"
	"time"

	"github.com/hanbit-dev/authportal-backend/internal/models"
)

type fakeDirectory struct {
	users   []models.User
	updated map[uint]string
}

func newFakeDirectory(users ...models.User) *fakeDirectory {
	return &fakeDirectory{users: users, updated: make(map[uint]string)}
}

func (d *fakeDirectory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for i := range d.users {
		if d.users[i].Email == email {
			return &d.users[i], nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) FindByNamePhone(_ context.Context, name, phone string) (*models.User, error) {
	for i := range d.users {
		if d.users[i].Name == name && d.users[i].Phone == phone {
			return &d.users[i], nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) ListByNamePhone(_ context.Context, name, phone string) ([]models.User, error) {
	var out []models.User
	for _, u := range d.users {
		if u.Name == name && u.Phone == phone {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *fakeDirectory) FindByEmailNamePhone(_ context.Context, email, name, phone string) (*models.User, error) {
	for i := range d.users {
		if d.users[i].Email == email && d.users[i].Name == name && d.users[i].Phone == phone {
			return &d.users[i], nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) UpdatePasswordHash(_ context.Context, userID uint, hash string) error {
	d.updated[userID] = hash
	for i := range d.users {
		if d.users[i].ID == userID {
			d.users[i].PasswordHash = hash
		}
	}
	return nil
}

type memChallengeStore struct {
	mu      sync.Mutex
	records map[string]*models.OtpChallenge
}

func newMemChallengeStore() *memChallengeStore {
	return &memChallengeStore{records: make(map[string]*models.OtpChallenge)}
}

func (s *memChallengeStore) Create(_ context.Context, challenge *models.OtpChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *challenge
	s.records[challenge.ID] = &cp
	return nil
}

func (s *memChallengeStore) Get(_ context.Context, id string) (*models.OtpChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

func (s *memChallengeStore) IncrementAttempts(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[id]; ok {
		record.Attempts++
	}
	return nil
}

func (s *memChallengeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

type sentMessage struct {
	Title      string
	Message    string
	Recipients []string
}

type fakeSMS struct {
	sent []sentMessage
}

func (f *fakeSMS) Send(_ context.Context, title, message string, recipients []string) error {
	f.sent = append(f.sent, sentMessage{Title: title, Message: message, Recipients: recipients})
	return nil
}

type memConsumer struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemConsumer() *memConsumer {
	return &memConsumer{seen: make(map[string]bool)}
}

func (c *memConsumer) Consume(_ context.Context, jti string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[jti] {
		return false, nil
	}
	c.seen[jti] = true
	return true, nil
}
