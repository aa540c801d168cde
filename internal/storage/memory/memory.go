// Package memory provides an in-memory store used for development and tests.
// Writes inside a Tx are staged and applied all-or-nothing on Commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// entryKey tracks ordering for entries: sorted asc by (Date, ID)
type entryKey struct {
	Date civil.Date
	ID   uuid.UUID
}

func (k entryKey) less(o entryKey) bool {
	if k.Date.Before(o.Date) {
		return true
	}
	if k.Date.After(o.Date) {
		return false
	}
	return k.ID.String() < o.ID.String()
}

type state struct {
	accounts   map[uuid.UUID]ledger.Account
	categories map[uuid.UUID]ledger.Category
	entries    map[uuid.UUID]ledger.Entry
	// sorted index of entries for ordered scans
	entryKeys []entryKey
	transfers map[uuid.UUID]ledger.Transfer
	payments  map[uuid.UUID]ledger.InvoicePayment
}

func newState() *state {
	return &state{
		accounts:   make(map[uuid.UUID]ledger.Account),
		categories: make(map[uuid.UUID]ledger.Category),
		entries:    make(map[uuid.UUID]ledger.Entry),
		transfers:  make(map[uuid.UUID]ledger.Transfer),
		payments:   make(map[uuid.UUID]ledger.InvoicePayment),
	}
}

func (st *state) clone() *state {
	return &state{
		accounts:   maps.Clone(st.accounts),
		categories: maps.Clone(st.categories),
		entries:    maps.Clone(st.entries),
		entryKeys:  append([]entryKey(nil), st.entryKeys...),
		transfers:  maps.Clone(st.transfers),
		payments:   maps.Clone(st.payments),
	}
}

// Store is an in-memory implementation of every repository and writer used by the services.
// It is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New constructs an empty in-memory store.
func New() *Store { return &Store{st: newState()} }

// Reset drops all data.
func (s *Store) Reset() {
	s.mu.Lock()
	s.st = newState()
	s.mu.Unlock()
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// --- Accounts ---

func (s *Store) ListAccounts(_ context.Context) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Account, 0, len(s.st.accounts))
	for _, a := range s.st.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.st.accounts[id]
	if !ok {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, nil
}

func (s *Store) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.accounts[a.ID]; ok {
		return ledger.Account{}, fmt.Errorf("account %s: %w", a.ID, errs.ErrConflict)
	}
	s.st.accounts[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return a, s.st.updateAccount(a)
}

func (st *state) updateAccount(a ledger.Account) error {
	if _, ok := st.accounts[a.ID]; !ok {
		return errs.ErrNotFound
	}
	st.accounts[a.ID] = a
	return nil
}

// DeleteAccount removes the account and every entry it owns.
func (s *Store) DeleteAccount(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.accounts[id]; !ok {
		return errs.ErrNotFound
	}
	for eid, e := range s.st.entries {
		if e.AccountID == id {
			_ = s.st.deleteEntry(eid)
		}
	}
	delete(s.st.accounts, id)
	return nil
}

// --- Categories ---

func (s *Store) ListCategories(_ context.Context) ([]ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Category, 0, len(s.st.categories))
	for _, c := range s.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id uuid.UUID) (ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.st.categories[id]
	if !ok {
		return ledger.Category{}, errs.ErrNotFound
	}
	return c, nil
}

// CategoryByName resolves a category by case-insensitive name and type.
func (s *Store) CategoryByName(_ context.Context, name string, typ ledger.CategoryType) (ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.st.categoryByName(name, typ); ok {
		return c, nil
	}
	return ledger.Category{}, errs.ErrNotFound
}

// EnsureCategory returns the existing category with the same name and type, creating it if missing.
func (s *Store) EnsureCategory(_ context.Context, c ledger.Category) (ledger.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.st.categoryByName(c.Name, c.Type); ok {
		return existing, nil
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.st.categories[c.ID] = c
	return c, nil
}

func (st *state) categoryByName(name string, typ ledger.CategoryType) (ledger.Category, bool) {
	for _, c := range st.categories {
		if c.Type == typ && strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ledger.Category{}, false
}

// --- Entries ---

// ListEntries returns entries matching f ordered by (Date, ID).
func (s *Store) ListEntries(_ context.Context, f ledger.EntryFilter) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.st.rangeByDate(f.From, f.To)
	out := make([]ledger.Entry, 0, len(keys))
	for _, k := range keys {
		if e, ok := s.st.entries[k.ID]; ok && f.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) GetEntry(_ context.Context, id uuid.UUID) (ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.st.entries[id]
	if !ok {
		return ledger.Entry{}, errs.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateEntry(_ context.Context, e ledger.Entry) (ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.createEntry(e); err != nil {
		return ledger.Entry{}, err
	}
	return e, nil
}

func (s *Store) UpdateEntry(_ context.Context, e ledger.Entry) (ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.updateEntry(e); err != nil {
		return ledger.Entry{}, err
	}
	return e, nil
}

func (s *Store) DeleteEntry(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deleteEntry(id)
}

func (st *state) createEntry(e ledger.Entry) error {
	if _, ok := st.accounts[e.AccountID]; !ok {
		return fmt.Errorf("entry account %s: %w", e.AccountID, errs.ErrNotFound)
	}
	if _, ok := st.entries[e.ID]; ok {
		return fmt.Errorf("entry %s: %w", e.ID, errs.ErrConflict)
	}
	st.entries[e.ID] = e
	st.insertEntryKey(entryKey{Date: e.Date, ID: e.ID})
	return nil
}

func (st *state) updateEntry(e ledger.Entry) error {
	old, ok := st.entries[e.ID]
	if !ok {
		return errs.ErrNotFound
	}
	if _, ok := st.accounts[e.AccountID]; !ok {
		return fmt.Errorf("entry account %s: %w", e.AccountID, errs.ErrNotFound)
	}
	if old.Date != e.Date {
		st.removeEntryKey(entryKey{Date: old.Date, ID: old.ID})
		st.insertEntryKey(entryKey{Date: e.Date, ID: e.ID})
	}
	st.entries[e.ID] = e
	return nil
}

func (st *state) deleteEntry(id uuid.UUID) error {
	e, ok := st.entries[id]
	if !ok {
		return errs.ErrNotFound
	}
	delete(st.entries, id)
	st.removeEntryKey(entryKey{Date: e.Date, ID: e.ID})
	return nil
}

// insertEntryKey inserts k into the sorted index, keeping order asc by (Date, ID).
func (st *state) insertEntryKey(k entryKey) {
	keys := st.entryKeys
	i := sort.Search(len(keys), func(i int) bool { return k.less(keys[i]) })
	if i == len(keys) {
		st.entryKeys = append(keys, k)
		return
	}
	keys = append(keys, entryKey{})
	copy(keys[i+1:], keys[i:])
	keys[i] = k
	st.entryKeys = keys
}

func (st *state) removeEntryKey(k entryKey) {
	keys := st.entryKeys
	i := sort.Search(len(keys), func(i int) bool { return !keys[i].less(k) })
	if i < len(keys) && keys[i] == k {
		st.entryKeys = append(keys[:i], keys[i+1:]...)
	}
}

// rangeByDate returns a copy of keys within [from,to] inclusive.
func (st *state) rangeByDate(from, to *civil.Date) []entryKey {
	keys := st.entryKeys
	start := 0
	if from != nil {
		f := *from
		start = sort.Search(len(keys), func(i int) bool { return !keys[i].Date.Before(f) })
	}
	end := len(keys)
	if to != nil {
		t := *to
		end = sort.Search(len(keys), func(i int) bool { return keys[i].Date.After(t) })
	}
	if start >= end {
		return nil
	}
	subset := make([]entryKey, end-start)
	copy(subset, keys[start:end])
	return subset
}

// --- Transfers ---

// ListTransfers returns transfers ordered by date; accountID limits to those touching the account.
func (s *Store) ListTransfers(_ context.Context, accountID *uuid.UUID) ([]ledger.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Transfer, 0)
	for _, t := range s.st.transfers {
		if accountID == nil || t.SourceAccountID == *accountID || t.DestinationAccountID == *accountID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return entryKey{out[i].Date, out[i].ID}.less(entryKey{out[j].Date, out[j].ID})
	})
	return out, nil
}

func (s *Store) GetTransfer(_ context.Context, id uuid.UUID) (ledger.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.st.transfers[id]
	if !ok {
		return ledger.Transfer{}, errs.ErrNotFound
	}
	return t, nil
}

func (s *Store) CreateTransfer(_ context.Context, t ledger.Transfer) (ledger.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.createTransfer(t); err != nil {
		return ledger.Transfer{}, err
	}
	return t, nil
}

func (s *Store) UpdateTransfer(_ context.Context, t ledger.Transfer) (ledger.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.updateTransfer(t); err != nil {
		return ledger.Transfer{}, err
	}
	return t, nil
}

func (s *Store) DeleteTransfer(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deleteTransfer(id)
}

func (st *state) createTransfer(t ledger.Transfer) error {
	if _, ok := st.transfers[t.ID]; ok {
		return fmt.Errorf("transfer %s: %w", t.ID, errs.ErrConflict)
	}
	st.transfers[t.ID] = t
	return nil
}

func (st *state) updateTransfer(t ledger.Transfer) error {
	if _, ok := st.transfers[t.ID]; !ok {
		return errs.ErrNotFound
	}
	st.transfers[t.ID] = t
	return nil
}

func (st *state) deleteTransfer(id uuid.UUID) error {
	if _, ok := st.transfers[id]; !ok {
		return errs.ErrNotFound
	}
	delete(st.transfers, id)
	return nil
}

// --- Invoice payments ---

// ListInvoicePayments returns payments ordered by date; accountID limits to those touching the account.
func (s *Store) ListInvoicePayments(_ context.Context, accountID *uuid.UUID) ([]ledger.InvoicePayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.InvoicePayment, 0)
	for _, p := range s.st.payments {
		if accountID == nil || p.SourceAccountID == *accountID || p.DestinationAccountID == *accountID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return entryKey{out[i].Date, out[i].ID}.less(entryKey{out[j].Date, out[j].ID})
	})
	return out, nil
}

func (s *Store) GetInvoicePayment(_ context.Context, id uuid.UUID) (ledger.InvoicePayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.st.payments[id]
	if !ok {
		return ledger.InvoicePayment{}, errs.ErrNotFound
	}
	return p, nil
}

func (s *Store) CreateInvoicePayment(_ context.Context, p ledger.InvoicePayment) (ledger.InvoicePayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.createPayment(p); err != nil {
		return ledger.InvoicePayment{}, err
	}
	return p, nil
}

func (s *Store) UpdateInvoicePayment(_ context.Context, p ledger.InvoicePayment) (ledger.InvoicePayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.st.updatePayment(p); err != nil {
		return ledger.InvoicePayment{}, err
	}
	return p, nil
}

func (s *Store) DeleteInvoicePayment(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deletePayment(id)
}

func (st *state) createPayment(p ledger.InvoicePayment) error {
	if _, ok := st.payments[p.ID]; ok {
		return fmt.Errorf("invoice payment %s: %w", p.ID, errs.ErrConflict)
	}
	st.payments[p.ID] = p
	return nil
}

func (st *state) updatePayment(p ledger.InvoicePayment) error {
	if _, ok := st.payments[p.ID]; !ok {
		return errs.ErrNotFound
	}
	st.payments[p.ID] = p
	return nil
}

func (st *state) deletePayment(id uuid.UUID) error {
	if _, ok := st.payments[id]; !ok {
		return errs.ErrNotFound
	}
	delete(st.payments, id)
	return nil
}

// --- Transactions ---

// ErrTxDone is returned when a Tx is used after Commit or Rollback.
var ErrTxDone = errors.New("memory: transaction already committed or rolled back")

// Tx stages writes and applies them atomically on Commit.
type Tx struct {
	s    *Store
	ops  []func(*state) error
	done bool
}

// BeginTx starts a staged transaction.
func (s *Store) BeginTx(_ context.Context) (*Tx, error) { return &Tx{s: s}, nil }

func (t *Tx) stage(op func(*state) error) error {
	if t.done {
		return ErrTxDone
	}
	t.ops = append(t.ops, op)
	return nil
}

func (t *Tx) UpdateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	return a, t.stage(func(st *state) error { return st.updateAccount(a) })
}

func (t *Tx) CreateEntry(_ context.Context, e ledger.Entry) (ledger.Entry, error) {
	return e, t.stage(func(st *state) error { return st.createEntry(e) })
}

func (t *Tx) UpdateEntry(_ context.Context, e ledger.Entry) (ledger.Entry, error) {
	return e, t.stage(func(st *state) error { return st.updateEntry(e) })
}

func (t *Tx) DeleteEntry(_ context.Context, id uuid.UUID) error {
	return t.stage(func(st *state) error { return st.deleteEntry(id) })
}

func (t *Tx) CreateTransfer(_ context.Context, tr ledger.Transfer) (ledger.Transfer, error) {
	return tr, t.stage(func(st *state) error { return st.createTransfer(tr) })
}

func (t *Tx) UpdateTransfer(_ context.Context, tr ledger.Transfer) (ledger.Transfer, error) {
	return tr, t.stage(func(st *state) error { return st.updateTransfer(tr) })
}

func (t *Tx) DeleteTransfer(_ context.Context, id uuid.UUID) error {
	return t.stage(func(st *state) error { return st.deleteTransfer(id) })
}

func (t *Tx) CreateInvoicePayment(_ context.Context, p ledger.InvoicePayment) (ledger.InvoicePayment, error) {
	return p, t.stage(func(st *state) error { return st.createPayment(p) })
}

func (t *Tx) UpdateInvoicePayment(_ context.Context, p ledger.InvoicePayment) (ledger.InvoicePayment, error) {
	return p, t.stage(func(st *state) error { return st.updatePayment(p) })
}

func (t *Tx) DeleteInvoicePayment(_ context.Context, id uuid.UUID) error {
	return t.stage(func(st *state) error { return st.deletePayment(id) })
}

// Commit applies every staged write or none of them.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	next := t.s.st.clone()
	for i, op := range t.ops {
		if err := op(next); err != nil {
			return fmt.Errorf("commit op %d: %w", i, err)
		}
	}
	t.s.st = next
	return nil
}

// Rollback discards staged writes. Calling it after Commit is a no-op.
func (t *Tx) Rollback(_ context.Context) error {
	t.done = true
	t.ops = nil
	return nil
}
