package store

import "sync/atomic"

type MetricsSnapshot struct {
	Stores             int64
	Dispatches         int64
	Rejected           int64
	RootNotifications  int64
	StoreNotifications int64
}

type Metrics struct {
	stores             atomic.Int64
	dispatches         atomic.Int64
	rejected           atomic.Int64
	rootNotifications  atomic.Int64
	storeNotifications atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordStore(delta int) {
	m.stores.Add(int64(delta))
}

func (m *Metrics) RecordDispatch(delta int) {
	m.dispatches.Add(int64(delta))
}

func (m *Metrics) RecordRejected(delta int) {
	m.rejected.Add(int64(delta))
}

func (m *Metrics) RecordRootNotification(delta int) {
	m.rootNotifications.Add(int64(delta))
}

func (m *Metrics) RecordStoreNotification(delta int) {
	m.storeNotifications.Add(int64(delta))
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Stores:             m.stores.Load(),
		Dispatches:         m.dispatches.Load(),
		Rejected:           m.rejected.Load(),
		RootNotifications:  m.rootNotifications.Load(),
		StoreNotifications: m.storeNotifications.Load(),
	}
}
