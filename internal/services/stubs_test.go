package services

import (
	"context"
	"encoding/json"
)

// stubDB answers Flux queries from a canned function so services can be
// tested without a running InfluxDB.
type stubDB struct {
	fn      func(flux string) ([]map[string]interface{}, error)
	pingErr error
	ready   bool
}

func (s *stubDB) QueryRecords(_ context.Context, flux string) ([]map[string]interface{}, error) {
	if s.fn == nil {
		return nil, nil
	}
	return s.fn(flux)
}

func (s *stubDB) Ping(context.Context) error { return s.pingErr }

func (s *stubDB) Ready() bool { return s.ready }

func fixedRecords(records []map[string]interface{}) *stubDB {
	return &stubDB{
		fn: func(string) ([]map[string]interface{}, error) {
			return records, nil
		},
		ready: true,
	}
}

// memStore is an in-memory SettingsStore.
type memStore struct {
	data    map[string][]byte
	saveErr error
	loadErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) SaveJSON(_ context.Context, key string, v any) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = data
	return nil
}

func (m *memStore) LoadJSON(_ context.Context, key string, dest any) (bool, error) {
	if m.loadErr != nil {
		return false, m.loadErr
	}
	data, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}
