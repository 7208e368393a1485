// Package otp keeps the short-lived one-time-passcode records issued for
// signature fields. Records live only in memory: they expire within a
// minute and must never be persisted beyond their validity window.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/paraphe-sign/internal/apperrors"
	"golang.org/x/crypto/bcrypt"
)

const CodeLength = 6

// Record is one live passcode bound to a (field, participant) pair. Only
// the bcrypt hash of the code is held; the plaintext exists just long
// enough to be dispatched.
type Record struct {
	ID           string
	CodeHash     []byte
	Channel      string
	ChannelValue string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	Attempts     int
}

type key struct {
	FieldID       string
	ParticipantID string
}

// Store holds at most one live record per (field, participant). Consume
// is an atomic check-and-delete: of two racing verify calls with a valid
// code, exactly one succeeds.
type Store struct {
	mu          sync.Mutex
	records     map[key]*Record
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewStore(ttl time.Duration, maxAttempts int, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{
		records:     make(map[key]*Record),
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         now,
	}
	go s.startCleanup()
	return s
}

func (s *Store) startCleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.sweep()
	}
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, rec := range s.records {
		if now.After(rec.ExpiresAt) {
			delete(s.records, k)
		}
	}
}

// Issue hashes the code and stores a fresh record, overwriting any prior
// unconsumed record for the same pair so a stale code can never be
// replayed after a re-send.
func (s *Store) Issue(fieldID, participantID, code, channel, channelValue, recordID string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	issued := s.now()
	s.records[key{fieldID, participantID}] = &Record{
		ID:           recordID,
		CodeHash:     hash,
		Channel:      channel,
		ChannelValue: channelValue,
		IssuedAt:     issued,
		ExpiresAt:    issued.Add(s.ttl),
	}
	return nil
}

// Consume verifies the code against the live record for the pair. On a
// match the record is deleted and returned; a second attempt with the
// same code finds no record and fails as expired. A mismatch burns one
// attempt; when the attempt budget is spent the record is invalidated,
// forcing a re-send.
func (s *Store) Consume(fieldID, participantID, code string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{fieldID, participantID}
	rec, ok := s.records[k]
	if !ok {
		return nil, apperrors.OtpExpired()
	}
	if s.now().After(rec.ExpiresAt) {
		delete(s.records, k)
		return nil, apperrors.OtpExpired()
	}

	if err := bcrypt.CompareHashAndPassword(rec.CodeHash, []byte(code)); err != nil {
		rec.Attempts++
		if rec.Attempts >= s.maxAttempts {
			delete(s.records, k)
		}
		return nil, apperrors.OtpMismatch()
	}

	delete(s.records, k)
	out := *rec
	return &out, nil
}

// Restore puts a consumed record back after the surrounding mutation
// failed to commit, so the delivered code stays usable for a retry. A
// record issued in the meantime wins, and an expired record is dropped.
func (s *Store) Restore(fieldID, participantID string, rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{fieldID, participantID}
	if _, ok := s.records[k]; ok {
		return
	}
	if s.now().After(rec.ExpiresAt) {
		return
	}
	r := *rec
	s.records[k] = &r
}

// Invalidate drops any live record for the pair. Used when a dispatch
// fails after issuance so no record survives without a delivered code.
func (s *Store) Invalidate(fieldID, participantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key{fieldID, participantID})
}

// GenerateCode produces a random fixed-length numeric code.
func GenerateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < CodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}
