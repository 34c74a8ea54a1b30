package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/noah-isme/attendance-ledger-api/internal/models"
	appErrors "github.com/noah-isme/attendance-ledger-api/pkg/errors"
)

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]models.AttendanceRecord
	getErr  map[string]error
	putErr  error
	puts    int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: map[string]models.AttendanceRecord{}, getErr: map[string]error{}}
}

func (f *fakeAttendanceRepo) Get(ctx context.Context, key string) (*models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[key]; err != nil {
		return nil, err
	}
	record, ok := f.records[key]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return &record, nil
}

func (f *fakeAttendanceRepo) Put(ctx context.Context, record *models.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.puts++
	if existing, ok := f.records[record.Key]; ok && existing.Version+1 > record.Version {
		record.Version = existing.Version + 1
	}
	f.records[record.Key] = *record
	return nil
}

type fakeSequencer struct {
	mu   sync.Mutex
	next int64
	err  error
}

func (f *fakeSequencer) Next(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	return f.next, nil
}

type fakeChildRepo struct {
	mu        sync.Mutex
	children  []models.Child
	listErr   error
	findErr   error
	createErr error
	lookups   []string
}

func (f *fakeChildRepo) List(ctx context.Context) ([]models.Child, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Child, len(f.children))
	copy(out, f.children)
	return out, nil
}

func (f *fakeChildRepo) FindByCode(ctx context.Context, code string) (*models.Child, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, code)
	f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, child := range f.children {
		if child.ID == code {
			c := child
			return &c, nil
		}
	}
	for _, child := range f.children {
		if child.CheckInCode != nil && *child.CheckInCode == code {
			c := child
			return &c, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (f *fakeChildRepo) Create(ctx context.Context, child *models.Child) error {
	if f.createErr != nil {
		return f.createErr
	}
	if child.ID == "" {
		child.ID = fmt.Sprintf("child-%d", len(f.children)+1)
	}
	f.children = append(f.children, *child)
	return nil
}

type fakePaymentRepo struct {
	records []models.PaymentRecord
	err     error
}

func (f *fakePaymentRepo) Add(ctx context.Context, payment *models.PaymentRecord) error {
	if f.err != nil {
		return f.err
	}
	payment.ID = fmt.Sprintf("payment-%d", len(f.records)+1)
	f.records = append(f.records, *payment)
	return nil
}

func child(id, course string) models.Child {
	return models.Child{ID: id, FirstName: "Name " + id, LastName: "Last", Course: models.Course(course)}
}
